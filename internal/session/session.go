// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aibor/virtbridge/internal/boot"
	"github.com/aibor/virtbridge/internal/bridge"
	"github.com/aibor/virtbridge/internal/capture"
	"github.com/aibor/virtbridge/internal/console"
	"github.com/aibor/virtbridge/internal/match"
	"github.com/aibor/virtbridge/internal/target"
)

// Session is an established connection to a guest's shell.
type Session struct {
	target  target.Target
	console *console.Log
	channel *bridge.Channel
	engine  *capture.Engine
}

// Open waits for the guest behind the target to become ready and sets up the
// input bridge. Errors are fatal for the session. They are either a
// [*boot.Error], a [*bridge.SetupError], a [*target.Error] or the context's
// error.
func Open(ctx context.Context, tgt target.Target, cfg Config) (*Session, error) {
	if tgt == nil {
		return nil, ErrNoTarget
	}

	if cfg.ConsoleLog == "" {
		return nil, ErrNoConsoleLog
	}

	log := console.New(cfg.ConsoleLog)
	if cfg.PollInterval > 0 {
		log.PollInterval = cfg.PollInterval
	}

	start := time.Now()

	err := awaitBoot(ctx, tgt, log, cfg)
	if err != nil {
		return nil, err
	}

	relay := &bridge.Bridge{
		Target:      tgt,
		Console:     log,
		Descriptor:  cfg.Descriptor,
		Pipe:        cfg.Pipe,
		GracePeriod: cfg.GracePeriod,
		ProbeWait:   cfg.ProbeWait,
	}

	channel, err := relay.Setup(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	slog.Debug("Session established",
		slog.String("target", tgt.Name()),
		slog.String("device", channel.Device()),
		slog.Bool("degraded", channel.Degraded()),
		slog.Duration("elapsed", time.Since(start)))

	return &Session{
		target:  tgt,
		console: log,
		channel: channel,
		engine: &capture.Engine{
			Channel:     channel,
			Console:     log,
			Timeout:     cfg.CommandTimeout,
			AttachDelay: cfg.AttachDelay,
		},
	}, nil
}

func awaitBoot(ctx context.Context, tgt target.Target, log *console.Log, cfg Config) error {
	if cfg.SkipBoot {
		return target.CheckAlive(ctx, tgt) //nolint:wrapcheck
	}

	patterns := cfg.ReadyPatterns
	if len(patterns) == 0 {
		patterns = match.DefaultReadyPatterns
	}

	matcher, err := match.NewMatcher(patterns...)
	if err != nil {
		return fmt.Errorf("ready patterns: %w", err)
	}

	monitor := &boot.Monitor{
		Target:   tgt,
		Console:  log,
		Matcher:  matcher,
		Timeout:  cfg.BootTimeout,
		Interval: cfg.BootInterval,
	}

	return monitor.Wait(ctx) //nolint:wrapcheck
}

// Target returns the target the session is established with.
func (s *Session) Target() target.Target {
	return s.target
}

// Channel returns the verified input channel.
func (s *Session) Channel() *bridge.Channel {
	return s.channel
}

// Run runs the command in the guest with the session's command timeout. See
// [capture.Engine.RunTimeout].
func (s *Session) Run(ctx context.Context, command string) (*capture.Result, error) {
	return s.engine.Run(ctx, command) //nolint:wrapcheck
}

// RunTimeout runs the command in the guest with the given timeout. A timeout
// that is not positive uses the session's command timeout.
func (s *Session) RunTimeout(
	ctx context.Context,
	command string,
	timeout time.Duration,
) (*capture.Result, error) {
	if timeout <= 0 {
		return s.Run(ctx, command)
	}

	return s.engine.RunTimeout(ctx, command, timeout) //nolint:wrapcheck
}

// Fetch copies the guest file into dst.
func (s *Session) Fetch(ctx context.Context, guestPath string, dst io.Writer) (int64, error) {
	return s.engine.Fetch(ctx, guestPath, dst) //nolint:wrapcheck
}

// Push copies src into the guest file.
func (s *Session) Push(ctx context.Context, src io.Reader, guestPath string) error {
	return s.engine.Push(ctx, src, guestPath) //nolint:wrapcheck
}

// Diagnostics returns the last lines of the console log. It is meant for
// error reporting, so read errors result in no lines.
func (s *Session) Diagnostics(lines int) []string {
	tail, err := s.console.Tail(lines)
	if err != nil {
		slog.Debug("Read console log", slog.Any("error", err))
		return nil
	}

	return tail
}
