// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package capture

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aibor/virtbridge/internal/console"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultTimeout is the time a command may take to finish.
	DefaultTimeout = 30 * time.Second

	// DefaultAttachDelay is the time given to the subscription to attach
	// before the command is sent.
	DefaultAttachDelay = 200 * time.Millisecond
)

// Sender delivers a line to the guest shell.
type Sender interface {
	Send(ctx context.Context, line string) error
}

// Console is the guest's console log.
type Console interface {
	Offset() (int64, error)
	Subscribe(ctx context.Context, offset int64) *console.Subscription
}

// Result of a single command.
type Result struct {
	Command string
	Lines   []string

	// Complete is false if the end marker was not seen before the timeout.
	// Lines contains the partial output in that case.
	Complete bool

	ExitCode      int
	ExitCodeFound bool

	Duration time.Duration
}

// Engine runs commands in the guest one at a time.
type Engine struct {
	Channel Sender
	Console Console

	// Timeout per command. Defaults to [DefaultTimeout].
	Timeout time.Duration
	// AttachDelay between subscribing to the console log and sending the
	// command. Defaults to [DefaultAttachDelay].
	AttachDelay time.Duration
	// NewID returns the marker ID for the next command. Defaults to [NewID].
	NewID func() string

	mu sync.Mutex
}

// Run runs the command with the engine's timeout. See [Engine.RunTimeout].
func (e *Engine) Run(ctx context.Context, command string) (*Result, error) {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return e.RunTimeout(ctx, command, timeout)
}

// RunTimeout runs the command in the guest and returns its output lines.
//
// Calls are serialized. Hitting the timeout is not an error: the result is
// marked incomplete and carries the lines captured so far. Errors are
// returned if the console log can not be read, the command can not be sent or
// ctx is done.
func (e *Engine) RunTimeout(
	ctx context.Context,
	command string,
	timeout time.Duration,
) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	newID := e.NewID
	if newID == nil {
		newID = NewID
	}

	envelope, err := NewEnvelope(command, newID())
	if err != nil {
		return nil, err
	}

	// Everything appended from now on is output of this command.
	offset, err := e.Console.Offset()
	if err != nil {
		return nil, fmt.Errorf("console offset: %w", err)
	}

	attachDelay := e.AttachDelay
	if attachDelay <= 0 {
		attachDelay = DefaultAttachDelay
	}

	start := time.Now()

	captureCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	scanner := NewScanner(envelope)

	group, groupCtx := errgroup.WithContext(captureCtx)

	group.Go(func() error {
		sub := e.Console.Subscribe(groupCtx, offset)
		for line := range sub.Lines() {
			if scanner.Feed(line) {
				break
			}
		}

		return sub.Err()
	})

	group.Go(func() error {
		if sleep(groupCtx, attachDelay) != nil {
			return nil
		}

		err := e.Channel.Send(groupCtx, envelope.Wrapped())
		if err != nil && groupCtx.Err() == nil {
			return fmt.Errorf("send command: %w", err)
		}

		return nil
	})

	err = group.Wait()
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	if ctx.Err() != nil {
		return nil, ctx.Err() //nolint:wrapcheck
	}

	result := &Result{
		Command:  command,
		Lines:    scanner.Lines(),
		Complete: scanner.State() == StateDone,
		Duration: time.Since(start),
	}
	result.ExitCode, result.ExitCodeFound = scanner.ExitCode()

	if !result.Complete {
		slog.Debug("Command capture timed out",
			slog.String("command", command),
			slog.String("state", scanner.State().String()),
			slog.Int("lines", len(result.Lines)),
			slog.Duration("timeout", timeout))
	}

	return result, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err() //nolint:wrapcheck
	case <-timer.C:
		return nil
	}
}
