// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/pflag"
)

var (
	// ErrHelp is returned when help or version output was requested.
	ErrHelp = pflag.ErrHelp

	ErrReadBuildInfo  = errors.New("failed to read build info")
	ErrEmptyFilePath  = errors.New("file path must not be empty")
	ErrNotRegularFile = errors.New("not a regular file")

	// ErrInvalidFetch is returned for fetch arguments not in the form
	// GUEST:HOST.
	ErrInvalidFetch = errors.New("fetch must be GUEST:HOST")

	// ErrCommandIncomplete is returned in strict mode if a command did not
	// finish in time.
	ErrCommandIncomplete = errors.New("command did not finish in time")
)

// ParseArgsError wraps errors that occur during argument parsing.
type ParseArgsError struct {
	err error
	msg string
}

func (e *ParseArgsError) Error() string {
	if e.err == nil {
		return e.msg
	}

	return fmt.Sprintf("%s: %v", e.msg, e.err)
}

func (e *ParseArgsError) Is(other error) bool {
	_, ok := other.(*ParseArgsError)
	return ok
}

func (e *ParseArgsError) Unwrap() error {
	return e.err
}

// CommandError is returned in strict mode for guest commands that failed or
// did not finish.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q: %v", e.Command, e.Err)
}

func (e *CommandError) Is(other error) bool {
	_, ok := other.(*CommandError)
	return ok
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// SessionError is returned if the session with the guest could not be
// established. It carries the last lines of output that may explain why.
type SessionError struct {
	Err         error
	Diagnostics []string
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("session: %v", e.Err)
}

func (e *SessionError) Is(other error) bool {
	_, ok := other.(*SessionError)
	return ok
}

func (e *SessionError) Unwrap() error {
	return e.Err
}
