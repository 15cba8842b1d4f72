// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"bytes"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aibor/virtbridge/internal/target"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expectedFlags(modify func(f *flags)) *flags {
	f := newDefaultFlags()
	modify(f)

	return f
}

func TestFlags_ParseArgs(t *testing.T) {
	tests := []struct {
		name          string
		args          []string
		expectedFlags *flags
		expecterErr   error
	}{
		{
			name:        "help",
			args:        []string{"--help"},
			expecterErr: ErrHelp,
		},
		{
			name: "version",
			args: []string{"--version"},
			expectedFlags: expectedFlags(func(f *flags) {
				f.Version = true
			}),
		},
		{
			name:        "no console log",
			args:        []string{"--target", "vm", "ls"},
			expecterErr: &ParseArgsError{},
		},
		{
			name:        "no target",
			args:        []string{"--console-log", "/tmp/console.log", "ls"},
			expecterErr: &ParseArgsError{},
		},
		{
			name: "no pid",
			args: []string{
				"--console-log", "/tmp/console.log",
				"--runtime", "process",
			},
			expecterErr: &ParseArgsError{},
		},
		{
			name: "unknown runtime",
			args: []string{
				"--console-log", "/tmp/console.log",
				"--runtime", "lxc",
				"--target", "vm",
			},
			expecterErr: target.ErrRuntimeNotSupported,
		},
		{
			name: "pid out of range",
			args: []string{
				"--console-log", "/tmp/console.log",
				"--runtime", "process",
				"--pid", "0",
			},
			expecterErr: &ParseArgsError{},
		},
		{
			name: "timeout too small",
			args: []string{
				"--console-log", "/tmp/console.log",
				"--target", "vm",
				"--timeout", "1ns",
			},
			expecterErr: &ParseArgsError{},
		},
		{
			name: "commands and script",
			args: []string{
				"--console-log", "/tmp/console.log",
				"--target", "vm",
				"--script", "/tmp/script.yaml",
				"ls",
			},
			expecterErr: &ParseArgsError{},
		},
		{
			name: "invalid fetch",
			args: []string{
				"--console-log", "/tmp/console.log",
				"--target", "vm",
				"--fetch", "/etc/hostname",
			},
			expecterErr: &ParseArgsError{},
		},
		{
			name: "defaults without commands",
			args: []string{
				"--console-log", "/tmp/console.log",
				"--target", "vm",
			},
			expectedFlags: expectedFlags(func(f *flags) {
				f.ConsoleLog = "/tmp/console.log"
				f.Target = "vm"
			}),
		},
		{
			name: "all flags",
			args: []string{
				"--runtime", "process",
				"--pid", "4711",
				"--console-log=/tmp/console.log",
				"--diagnostic-log", "/tmp/qemu.log",
				"--boot-timeout", "2m",
				"--boot-interval=500ms",
				"--ready-pattern", "login:",
				"--ready-pattern", `^\$ $`,
				"--skip-boot",
				"--input-descriptor", "/run/input-device",
				"--input-pipe", "/run/input",
				"--timeout", "1m",
				"--fetch", "/etc/os-release:/tmp/os-release",
				"--strict",
				"--debug",
				"uname -a",
				"ls -l /",
			},
			expectedFlags: expectedFlags(func(f *flags) {
				f.Runtime = "process"
				f.PID = 4711
				f.ConsoleLog = "/tmp/console.log"
				f.DiagnosticLog = "/tmp/qemu.log"
				f.BootTimeout = 2 * time.Minute
				f.BootInterval = 500 * time.Millisecond
				f.ReadyPatterns = []string{"login:", `^\$ $`}
				f.SkipBoot = true
				f.Descriptor = "/run/input-device"
				f.Pipe = "/run/input"
				f.Timeout = time.Minute
				f.Fetches = FetchList{{Guest: "/etc/os-release", Host: "/tmp/os-release"}}
				f.Strict = true
				f.Debug = true
				f.Commands = []string{"uname -a", "ls -l /"}
			}),
		},
		{
			name: "flag parsing stops at first command",
			args: []string{
				"--runtime=podman",
				"--target", "vm",
				"--console-log", "/tmp/console.log",
				"ls",
				"--debug",
				"-la",
			},
			expectedFlags: expectedFlags(func(f *flags) {
				f.Runtime = "podman"
				f.Target = "vm"
				f.ConsoleLog = "/tmp/console.log"
				f.Commands = []string{"ls", "--debug", "-la"}
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags, err := parseArgs(tt.args, io.Discard)
			require.ErrorIs(t, err, tt.expecterErr)

			if tt.expecterErr != nil {
				return
			}

			flags.flagSet = nil
			flags.output = nil

			if len(flags.Commands) == 0 {
				flags.Commands = nil
			}

			assert.Equal(t, tt.expectedFlags, flags)
		})
	}
}

func TestFlags_FailPrintsUsage(t *testing.T) {
	var output bytes.Buffer

	_, err := parseArgs([]string{"--target", "vm"}, &output)
	require.ErrorIs(t, err, &ParseArgsError{})

	assert.Contains(t, output.String(), "no console log given")
	assert.Contains(t, output.String(), "Usage of 'virtbridge'")
	assert.Contains(t, output.String(), "--console-log")
}

func TestFlags_LogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, newDefaultFlags().logLevel())
	assert.Equal(t, slog.LevelDebug, (&flags{Debug: true}).logLevel())
}
