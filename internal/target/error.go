// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package target

import (
	"errors"
	"fmt"
)

var (
	// ErrTargetDead is returned if the target is not running anymore.
	ErrTargetDead = errors.New("target is not alive")

	// ErrRuntimeNotSupported is returned for unknown container runtimes.
	ErrRuntimeNotSupported = errors.New("runtime not supported")

	// ErrEmptyName is returned if a target is created without name.
	ErrEmptyName = errors.New("empty target name")

	// ErrInvalidPID is returned if a process target is created without a
	// valid process ID.
	ErrInvalidPID = errors.New("invalid process id")
)

// Error wraps errors occurring while interacting with a [Target].
type Error struct {
	Name string
	Err  error
}

// Error implements the [error] interface.
func (e *Error) Error() string {
	return fmt.Sprintf("target %s: %v", e.Name, e.Err)
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
