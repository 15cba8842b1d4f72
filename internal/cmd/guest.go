// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"iter"
	"strings"
	"time"

	"github.com/aibor/virtbridge/internal/capture"
	"github.com/aibor/virtbridge/internal/session"
	"github.com/aibor/virtbridge/internal/target"
)

// guest is the part of a session commands are run with.
type guest interface {
	RunTimeout(ctx context.Context, command string, timeout time.Duration) (*capture.Result, error)
	Fetch(ctx context.Context, guestPath string, dst io.Writer) (int64, error)
}

// job is a single command to run in the guest.
type job struct {
	name    string
	command string
	// timeout of the command. Zero uses the session's default.
	timeout time.Duration
}

func newTarget(flags *flags) (target.Target, error) {
	if flags.Runtime == runtimeProcess {
		tgt, err := target.NewProcess(int(flags.PID), string(flags.DiagnosticLog)) //nolint:gosec
		if err != nil {
			return nil, fmt.Errorf("process target: %w", err)
		}

		return tgt, nil
	}

	tgt, err := target.NewContainer(flags.Runtime, flags.Target)
	if err != nil {
		return nil, fmt.Errorf("container target: %w", err)
	}

	return tgt, nil
}

func newSessionConfig(flags *flags) session.Config {
	cfg := session.Defaults()

	cfg.ConsoleLog = string(flags.ConsoleLog)
	cfg.BootTimeout = flags.BootTimeout
	cfg.BootInterval = flags.BootInterval
	cfg.SkipBoot = flags.SkipBoot
	cfg.Descriptor = flags.Descriptor
	cfg.Pipe = flags.Pipe
	cfg.CommandTimeout = flags.Timeout

	if len(flags.ReadyPatterns) > 0 {
		cfg.ReadyPatterns = flags.ReadyPatterns
	}

	return cfg
}

func commandJobs(commands []string) iter.Seq[job] {
	return func(yield func(job) bool) {
		for _, command := range commands {
			if !yield(job{command: command}) {
				return
			}
		}
	}
}

func scriptJobs(script *Script) iter.Seq[job] {
	return func(yield func(job) bool) {
		for _, command := range script.Commands {
			next := job{
				name:    command.Name,
				command: command.Run,
				timeout: command.Timeout,
			}
			if !yield(next) {
				return
			}
		}
	}
}

// lineJobs reads one command per line. Empty lines and lines starting with
// "#" are skipped.
type lineJobs struct {
	scanner *bufio.Scanner
}

func newLineJobs(reader io.Reader) *lineJobs {
	return &lineJobs{scanner: bufio.NewScanner(reader)}
}

func (l *lineJobs) All() iter.Seq[job] {
	return func(yield func(job) bool) {
		for l.scanner.Scan() {
			line := strings.TrimSpace(l.scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			if !yield(job{command: line}) {
				return
			}
		}
	}
}

func (l *lineJobs) Err() error {
	return l.scanner.Err() //nolint:wrapcheck
}
