// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package boot

import (
	"context"
	"log/slog"
	"time"

	"github.com/aibor/virtbridge/internal/match"
	"github.com/aibor/virtbridge/internal/target"
)

const (
	DefaultTimeout  = 600 * time.Second
	DefaultInterval = 5 * time.Second

	// heartbeatPeriod is the approximate wait time between progress logs.
	heartbeatPeriod = 100 * time.Second

	// Number of diagnostic lines attached to errors.
	deadDiagnosticLines    = 100
	timeoutDiagnosticLines = 200
)

// ConsoleTail returns the trailing lines of the console log.
type ConsoleTail interface {
	Tail(n int) ([]string, error)
}

// Monitor waits for the guest to become ready.
type Monitor struct {
	Target  target.Target
	Console ConsoleTail
	Matcher *match.Matcher

	// Timeout for the whole wait. Defaults to [DefaultTimeout].
	Timeout time.Duration
	// Interval between poll ticks. Defaults to [DefaultInterval].
	Interval time.Duration
	// Window is the number of trailing lines searched. Defaults to
	// [match.DefaultWindow].
	Window int

	state State
	ticks int
	err   error
}

// State returns the current state of the monitor.
func (m *Monitor) State() State {
	return m.state
}

// Ticks returns the number of poll ticks run so far.
func (m *Monitor) Ticks() int {
	return m.ticks
}

func (m *Monitor) timeout() time.Duration {
	if m.Timeout <= 0 {
		return DefaultTimeout
	}

	return m.Timeout
}

func (m *Monitor) interval() time.Duration {
	if m.Interval <= 0 {
		return DefaultInterval
	}

	return m.Interval
}

func (m *Monitor) window() int {
	if m.Window <= 0 {
		return match.DefaultWindow
	}

	return m.Window
}

// Attempts returns the number of poll ticks for the configured timeout and
// interval. It is at least one.
func (m *Monitor) Attempts() int {
	return max(int(m.timeout()/m.interval()), 1)
}

// heartbeatTicks returns after how many ticks progress is logged.
func (m *Monitor) heartbeatTicks() int {
	return max(int(heartbeatPeriod/m.interval()), 1)
}

// Wait polls until the guest is ready. It returns an [*Error] if the timeout
// is reached or the target is not alive anymore. It returns the context's
// error if it is done before.
//
// A monitor can be used only once. Calling Wait on a monitor that is not in
// [StatePolling] anymore returns the result of the first call.
func (m *Monitor) Wait(ctx context.Context) error {
	switch m.state {
	case StateReady:
		return nil
	case StateFailed:
		return m.err
	case StatePolling:
	}

	attempts := m.Attempts()
	heartbeat := m.heartbeatTicks()
	start := time.Now()

	slog.Debug("Waiting for guest boot",
		slog.String("target", m.Target.Name()),
		slog.Duration("timeout", m.timeout()),
		slog.Duration("interval", m.interval()),
		slog.Int("attempts", attempts))

	for m.ticks < attempts {
		m.ticks++

		if !m.Target.Alive(ctx) {
			return m.fail(ctx, ErrTargetDead, start, deadDiagnosticLines)
		}

		if m.ready(ctx) {
			m.state = StateReady

			slog.Info("Guest ready",
				slog.String("target", m.Target.Name()),
				slog.Duration("elapsed", time.Since(start)))

			return nil
		}

		if m.ticks%heartbeat == 0 {
			slog.Info("Still waiting for guest boot",
				slog.String("target", m.Target.Name()),
				slog.Duration("elapsed", time.Since(start)),
				slog.Int("tick", m.ticks),
				slog.Int("attempts", attempts))
		}

		err := sleep(ctx, m.interval())
		if err != nil {
			return err
		}
	}

	return m.fail(ctx, ErrTimeout, start, timeoutDiagnosticLines)
}

// ready checks the console log first and the target's diagnostic output as
// fallback.
func (m *Monitor) ready(ctx context.Context) bool {
	if m.Console != nil {
		lines, err := m.Console.Tail(m.window())
		if err != nil {
			slog.Debug("Read console log", slog.Any("error", err))
		} else if line, found := m.Matcher.Match(lines); found {
			slog.Debug("Ready phrase found in console log",
				slog.String("line", line))

			return true
		}
	}

	output, err := m.Target.RecentOutput(ctx, m.window())
	if err != nil {
		slog.Debug("Read diagnostic output", slog.Any("error", err))
		return false
	}

	line, found := m.Matcher.MatchText(output, m.window())
	if found {
		slog.Debug("Ready phrase found in diagnostic output",
			slog.String("line", line))
	}

	return found
}

func (m *Monitor) fail(
	ctx context.Context,
	err error,
	start time.Time,
	diagnosticLines int,
) error {
	m.state = StateFailed

	bootErr := &Error{
		Err:     err,
		Elapsed: time.Since(start).Round(time.Millisecond),
	}

	output, outputErr := m.Target.RecentOutput(ctx, diagnosticLines)
	if outputErr != nil {
		slog.Warn("Failed to fetch diagnostic output",
			slog.String("target", m.Target.Name()),
			slog.Any("error", outputErr))
	} else {
		bootErr.Diagnostics = match.Tail(output, diagnosticLines)
	}

	m.err = bootErr

	return bootErr
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
