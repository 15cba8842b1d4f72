// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package target

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// Runner runs the named program with the given arguments and returns its
// combined output and exit status.
//
// A program that ran but exited non-zero is not an error.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, int, error)

var _ Runner = ExecRunner

// ExecRunner is the default [Runner] based on [exec.CommandContext].
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, int, error) {
	var output bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &output
	cmd.Stderr = &output

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			return output.Bytes(), exitErr.ExitCode(), nil
		}

		return output.Bytes(), -1, fmt.Errorf("run %s: %w", name, err)
	}

	return output.Bytes(), 0, nil
}
