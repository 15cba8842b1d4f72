// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package target

import (
	"context"
)

// Target is the execution environment the guest runs in.
type Target interface {
	// Name returns the handle identifying the target.
	Name() string

	// Alive reports if the target is still running. It must be cheap enough
	// to be called on every poll tick. Any failure to determine the state is
	// reported as not alive.
	Alive(ctx context.Context) bool

	// Exec runs the given shell script inside the target and returns its
	// combined output and exit status. A non-zero exit status is not an
	// error. Errors are returned only if the script could not be run at all.
	Exec(ctx context.Context, script string) (string, int, error)

	// RecentOutput returns the last lines of the target's diagnostic output.
	RecentOutput(ctx context.Context, lines int) (string, error)
}

// CheckAlive returns [ErrTargetDead] if the target is not alive.
func CheckAlive(ctx context.Context, target Target) error {
	if target.Alive(ctx) {
		return nil
	}

	return &Error{Name: target.Name(), Err: ErrTargetDead}
}
