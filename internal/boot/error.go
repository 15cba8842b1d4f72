// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package boot

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrTimeout is returned if no ready phrase was found in time.
	ErrTimeout = errors.New("boot timed out")

	// ErrTargetDead is returned if the target died while waiting.
	ErrTargetDead = errors.New("target died during boot")
)

// Error is returned if the guest did not become ready. It carries the last
// lines of the target's diagnostic output.
type Error struct {
	Err         error
	Elapsed     time.Duration
	Diagnostics []string
}

// Error implements the [error] interface.
func (e *Error) Error() string {
	return fmt.Sprintf("boot after %s: %v", e.Elapsed, e.Err)
}

// Is implements the [errors.Is] interface.
func (*Error) Is(other error) bool {
	_, ok := other.(*Error)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *Error) Unwrap() error {
	return e.Err
}
