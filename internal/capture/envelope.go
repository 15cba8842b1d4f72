// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package capture

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aibor/virtbridge/internal/exitcode"
	"github.com/google/uuid"
)

const (
	startPrefix  = "__START_"
	endPrefix    = "__END_"
	markerSuffix = "__"
)

// ErrEmptyCommand is returned for commands that are empty or consist of
// whitespace only.
var ErrEmptyCommand = errors.New("empty command")

// Envelope wraps a command with its start and end markers.
type Envelope struct {
	Command string
	ID      string
	Start   string
	End     string
}

// NewID returns an identifier that is unique across immediate successive
// calls. It is built from the current time in nanoseconds and a random
// suffix.
func NewID() string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%d_%s", time.Now().UnixNano(), random)
}

// NewEnvelope creates the [Envelope] for the command with markers derived from
// the given ID. The command is kept as is apart from surrounding whitespace.
func NewEnvelope(command, id string) (Envelope, error) {
	command = strings.TrimSpace(command)
	if strings.Trim(command, "; \t") == "" {
		return Envelope{}, ErrEmptyCommand
	}

	return Envelope{
		Command: command,
		ID:      id,
		Start:   startPrefix + id + markerSuffix,
		End:     endPrefix + id + markerSuffix,
	}, nil
}

// Wrapped returns the single line shell command that runs the command between
// its markers. Stderr is merged into stdout and the end marker carries the
// command's exit status.
//
// The markers are spelled as two concatenated shell words, so the terminal's
// echo of the line itself never contains a marker.
func (e Envelope) Wrapped() string {
	return fmt.Sprintf("{ echo %s; %s%s echo %s%s; } 2>&1",
		spell(e.Start), e.Command, separator(e.Command), spell(e.End),
		exitcode.ShellTrailer)
}

// separator returns the list separator needed after the command. Commands
// already terminated by an unescaped ";" or a single "&" get none, as another
// ";" would be a syntax error.
func separator(command string) string {
	last := len(command) - 1

	switch command[last] {
	case ';':
	case '&':
		if last > 0 && command[last-1] == '&' {
			return ";"
		}
	default:
		return ";"
	}

	backslashes := 0
	for idx := last - 1; idx >= 0 && command[idx] == '\\'; idx-- {
		backslashes++
	}

	if backslashes%2 == 1 {
		return ";"
	}

	return ""
}

// spell splits the marker into two quoted words the shell concatenates.
func spell(marker string) string {
	return "'" + marker[:2] + "''" + marker[2:] + "'"
}
