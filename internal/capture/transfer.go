// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package capture

import (
	"context"
	"fmt"
	"io"

	"github.com/aibor/virtbridge/internal/bridge"
	"github.com/aibor/virtbridge/internal/exitcode"
	"github.com/aibor/virtbridge/internal/pipe"
)

// Fetch copies the file at guestPath from the guest into dst. The guest must
// provide the base64 utility.
func (e *Engine) Fetch(ctx context.Context, guestPath string, dst io.Writer) (int64, error) {
	result, err := e.Run(ctx, "base64 "+bridge.Quote(guestPath))
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", guestPath, err)
	}

	err = checkTransferResult(result)
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", guestPath, err)
	}

	n, err := pipe.DecodeLines(dst, result.Lines)
	if err != nil {
		return n, fmt.Errorf("fetch %s: %w", guestPath, err)
	}

	return n, nil
}

// Push copies all data from src into the file at guestPath in the guest. The
// data is sent in base64 encoded chunks, one command per chunk, and decoded
// in the guest once complete. The guest must provide the base64 utility.
func (e *Engine) Push(ctx context.Context, src io.Reader, guestPath string) error {
	lines, err := pipe.EncodeLines(src, pipe.DefaultLineWidth*8)
	if err != nil {
		return fmt.Errorf("push %s: %w", guestPath, err)
	}

	encodedPath := bridge.Quote(guestPath + ".b64")
	commands := make([]string, 0, len(lines)+2)
	commands = append(commands, ": > "+encodedPath)

	for _, line := range lines {
		commands = append(commands, fmt.Sprintf("echo %s >> %s", line, encodedPath))
	}

	commands = append(commands, fmt.Sprintf("base64 -d %s > %s && rm -f %s",
		encodedPath, bridge.Quote(guestPath), encodedPath))

	for _, command := range commands {
		result, err := e.Run(ctx, command)
		if err != nil {
			return fmt.Errorf("push %s: %w", guestPath, err)
		}

		err = checkTransferResult(result)
		if err != nil {
			return fmt.Errorf("push %s: %w", guestPath, err)
		}
	}

	return nil
}

func checkTransferResult(result *Result) error {
	if !result.Complete {
		return pipe.ErrIncomplete
	}

	if result.ExitCodeFound && result.ExitCode != 0 {
		return exitcode.Error(result.ExitCode)
	}

	return nil
}
