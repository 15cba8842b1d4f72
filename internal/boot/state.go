// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package boot

// State of a [Monitor].
type State int

const (
	// StatePolling is the initial state.
	StatePolling State = iota
	// StateReady is reached once a ready phrase is found.
	StateReady
	// StateFailed is reached on timeout or target death.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePolling:
		return "polling"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
