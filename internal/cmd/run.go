// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/aibor/virtbridge/internal/boot"
	"github.com/aibor/virtbridge/internal/capture"
	"github.com/aibor/virtbridge/internal/console"
	"github.com/aibor/virtbridge/internal/exitcode"
	"github.com/aibor/virtbridge/internal/session"
)

// setupDiagnosticLines is the number of console log lines printed if the
// bridge setup fails.
const setupDiagnosticLines = 20

// IO provides input and output details for the command.
type IO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func newFlags(args []string, cfg IO) (*flags, error) {
	args, err := MergedArgs(args, os.DirFS("."), localConfigFile)
	if err != nil {
		return nil, err
	}

	flags, err := parseArgs(args, cfg.Stderr)
	if err != nil {
		return nil, fmt.Errorf("parse args: %w", err)
	}

	return flags, nil
}

func run(ctx context.Context, flags *flags, cfg IO) error {
	err := flags.validateFilePaths()
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	var (
		jobs  iter.Seq[job]
		lines *lineJobs
	)

	switch {
	case flags.Script != "":
		script, err := ReadScript(string(flags.Script))
		if err != nil {
			return err
		}

		jobs = scriptJobs(script)
	case len(flags.Commands) > 0:
		jobs = commandJobs(flags.Commands)
	default:
		lines = newLineJobs(cfg.Stdin)
		jobs = lines.All()
	}

	tgt, err := newTarget(flags)
	if err != nil {
		return err
	}

	sess, err := session.Open(ctx, tgt, newSessionConfig(flags))
	if err != nil {
		return newSessionError(err, string(flags.ConsoleLog))
	}

	err = runJobs(ctx, sess, jobs, flags.Strict, cfg.Stdout)
	if err != nil {
		return err
	}

	if lines != nil {
		err := lines.Err()
		if err != nil {
			return fmt.Errorf("read commands: %w", err)
		}
	}

	return fetchFiles(ctx, sess, flags.Fetches)
}

func newSessionError(err error, consoleLog string) error {
	sessionErr := &SessionError{Err: err}

	var bootErr *boot.Error
	if errors.As(err, &bootErr) {
		sessionErr.Diagnostics = bootErr.Diagnostics
		return sessionErr
	}

	tail, tailErr := console.New(consoleLog).Tail(setupDiagnosticLines)
	if tailErr != nil {
		slog.Debug("Read console log", slog.Any("error", tailErr))
	}

	sessionErr.Diagnostics = tail

	return sessionErr
}

// runJobs runs the jobs one after the other and prints their output.
func runJobs(
	ctx context.Context,
	sess guest,
	jobs iter.Seq[job],
	strict bool,
	output io.Writer,
) error {
	for next := range jobs {
		slog.Debug("Run command",
			slog.String("name", next.name),
			slog.String("command", next.command))

		result, err := sess.RunTimeout(ctx, next.command, next.timeout)
		if err != nil {
			return &CommandError{Command: next.command, Err: err}
		}

		for _, line := range result.Lines {
			fmt.Fprintln(output, line)
		}

		err = checkResult(result)
		if err != nil {
			if strict {
				return &CommandError{Command: next.command, Err: err}
			}

			slog.Debug("Command failed, ignored",
				slog.String("command", next.command),
				slog.Duration("duration", result.Duration),
				slog.Int("lines", len(result.Lines)),
				slog.Any("error", err))
		}
	}

	return nil
}

func checkResult(result *capture.Result) error {
	if !result.Complete {
		return ErrCommandIncomplete
	}

	if result.ExitCodeFound && result.ExitCode != 0 {
		return exitcode.Error(result.ExitCode)
	}

	return nil
}

func fetchFiles(ctx context.Context, sess guest, fetches FetchList) error {
	for _, fetch := range fetches {
		err := fetchFile(ctx, sess, fetch)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", fetch, err)
		}
	}

	return nil
}

func fetchFile(ctx context.Context, sess guest, fetch Fetch) error {
	file, err := os.Create(fetch.Host)
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}

	written, err := sess.Fetch(ctx, fetch.Guest, file)

	closeErr := file.Close()
	if err == nil && closeErr != nil {
		err = fmt.Errorf("close: %w", closeErr)
	}

	if err != nil {
		_ = os.Remove(fetch.Host)
		return err //nolint:wrapcheck
	}

	slog.Debug("Fetched file",
		slog.String("guest", fetch.Guest),
		slog.String("host", fetch.Host),
		slog.Int64("bytes", written))

	return nil
}

func handleParseArgsError(err error, stderr io.Writer) int {
	// [ErrHelp] is returned when help is requested. So exit without error
	// in this case.
	if errors.Is(err, ErrHelp) {
		return 0
	}

	// ParseArgs already prints errors, so we just exit without an error.
	if !errors.Is(err, &ParseArgsError{}) {
		fmt.Fprintf(stderr, "Error [%s]: %v\n", name, err)
	}

	return -1
}

func handleRunError(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}

	exitCode, isGuestExitCode := exitcode.From(err)

	// Do not print the error in case the guest command ran and properly
	// communicated a non-zero exit code in strict mode.
	if isGuestExitCode {
		return exitCode
	}

	fmt.Fprintf(stderr, "Error [%s]: %v\n", name, err)

	var sessionErr *SessionError
	if errors.As(err, &sessionErr) && len(sessionErr.Diagnostics) > 0 {
		fmt.Fprintf(stderr, "Last %d lines of guest output:\n", len(sessionErr.Diagnostics))

		for _, line := range sessionErr.Diagnostics {
			fmt.Fprintf(stderr, "  %s\n", line)
		}
	}

	return exitCode
}

// Run is the main entry point for the CLI command.
func Run(ctx context.Context, args []string, cfg IO) int {
	flags, err := newFlags(args, cfg)
	if err != nil {
		return handleParseArgsError(err, cfg.Stderr)
	}

	setupLogging(cfg.Stderr, flags.logLevel())

	if flags.Version {
		buildInfo, err := getBuildInfo()
		if err != nil {
			return handleRunError(err, cfg.Stderr)
		}

		fmt.Fprintf(cfg.Stdout, "Version: %s\n", buildInfo.Main.Version)

		return 0
	}

	err = run(ctx, flags, cfg)

	return handleRunError(err, cfg.Stderr)
}

func getBuildInfo() (*debug.BuildInfo, error) {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return nil, ErrReadBuildInfo
	}

	return buildInfo, nil
}
