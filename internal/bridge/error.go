// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bridge

import (
	"errors"
	"fmt"
)

var (
	// ErrNoInputDevice is returned if the file describing the guest's input
	// device does not exist in the target.
	ErrNoInputDevice = errors.New("guest input device descriptor missing")

	// ErrEmptyDevicePath is returned if the descriptor file is empty.
	ErrEmptyDevicePath = errors.New("guest input device path empty")

	// ErrSelfTestFailed is returned if the self-test probe did not show up
	// in the console log.
	ErrSelfTestFailed = errors.New("relay self-test probe not found in console log")

	// ErrMultiLine is returned if a line to send contains line breaks.
	ErrMultiLine = errors.New("line contains line breaks")

	// ErrRelayNotRunning is logged if no relay process is found after
	// launch. It is a warning only, the self-test is authoritative.
	ErrRelayNotRunning = errors.New("relay process not found")
)

// SetupError is returned if the bridge could not be set up. It is fatal for
// the session.
type SetupError struct {
	Step string
	Err  error
}

// Error implements the [error] interface.
func (e *SetupError) Error() string {
	return fmt.Sprintf("bridge setup %s: %v", e.Step, e.Err)
}

// Is implements the [errors.Is] interface.
func (*SetupError) Is(other error) bool {
	_, ok := other.(*SetupError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *SetupError) Unwrap() error {
	return e.Err
}
