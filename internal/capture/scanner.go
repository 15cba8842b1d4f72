// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package capture

import (
	"strings"

	"github.com/aibor/virtbridge/internal/exitcode"
)

// ScanState is the state of a [Scanner].
type ScanState int

const (
	// StateSeekingStart discards lines until the start marker.
	StateSeekingStart ScanState = iota
	// StateCapturing collects lines until the end marker.
	StateCapturing
	// StateDone ignores all further lines.
	StateDone
)

func (s ScanState) String() string {
	switch s {
	case StateSeekingStart:
		return "seeking start"
	case StateCapturing:
		return "capturing"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Scanner collects the lines between the markers of an [Envelope]. Marker
// lines are not collected.
type Scanner struct {
	envelope Envelope
	state    ScanState
	lines    []string

	exitCode      int
	exitCodeFound bool
}

// NewScanner creates a new [Scanner] for the given [Envelope].
func NewScanner(envelope Envelope) *Scanner {
	return &Scanner{envelope: envelope}
}

// Feed processes the next line. It returns true once the end marker has been
// seen.
func (s *Scanner) Feed(line string) bool {
	switch s.state {
	case StateSeekingStart:
		if strings.Contains(line, s.envelope.Start) {
			s.state = StateCapturing
		}
	case StateCapturing:
		if strings.Contains(line, s.envelope.End) {
			s.state = StateDone
			s.exitCode, s.exitCodeFound = exitcode.Parse(line, s.envelope.End)

			break
		}

		s.lines = append(s.lines, line)
	case StateDone:
	}

	return s.state == StateDone
}

// State returns the current state.
func (s *Scanner) State() ScanState {
	return s.state
}

// Lines returns the lines collected so far in order.
func (s *Scanner) Lines() []string {
	return s.lines
}

// ExitCode returns the exit code found on the end marker line, if any.
func (s *Scanner) ExitCode() (int, bool) {
	return s.exitCode, s.exitCodeFound
}
