// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aibor/virtbridge/internal/boot"
	"github.com/aibor/virtbridge/internal/bridge"
	"github.com/aibor/virtbridge/internal/capture"
	"github.com/aibor/virtbridge/internal/target"
	"github.com/spf13/pflag"
)

const (
	name = "virtbridge"

	runtimeProcess = "process"

	// Linux' PID_MAX_LIMIT.
	pidMax = 1 << 22

	bootTimeoutMax  = 24 * time.Hour
	bootIntervalMin = 10 * time.Millisecond
	timeoutMin      = 10 * time.Millisecond

	usageMessage = `Usage of 'virtbridge':
    virtbridge [flags...] [command...]

Runs shell commands in a QEMU guest through its serial console and prints
their output. The guest's console must be written to a log file readable on
the host (--console-log).

Each positional argument is run as a separate command. Without commands and
without --script, commands are read line by line from stdin.

Using it with a container that runs QEMU:
    virtbridge --target vm --console-log ./console.log 'uname -a'

Using it with a QEMU process on the local host:
    virtbridge --runtime process --pid 4711 --console-log ./console.log 'ls /'

All virtbridge flags can also be provided via environment variable
VIRTBRIDGE_ARGS or via file ./.virtbridge-args, with one argument per line.
`
)

type flags struct {
	Runtime       string
	Target        string
	PID           uint64
	ConsoleLog    FilePath
	DiagnosticLog FilePath

	BootTimeout   time.Duration
	BootInterval  time.Duration
	ReadyPatterns []string
	SkipBoot      bool

	Descriptor string
	Pipe       string

	Timeout time.Duration
	Script  FilePath
	Fetches FetchList
	Strict  bool

	Commands []string

	Debug   bool
	Version bool

	flagSet *pflag.FlagSet
	output  io.Writer
}

func newDefaultFlags() *flags {
	return &flags{
		Runtime:      target.RuntimeDocker,
		BootTimeout:  boot.DefaultTimeout,
		BootInterval: boot.DefaultInterval,
		Descriptor:   bridge.DefaultDescriptor,
		Pipe:         bridge.DefaultPipe,
		Timeout:      capture.DefaultTimeout,
	}
}

func parseArgs(args []string, output io.Writer) (*flags, error) {
	flags := newDefaultFlags()
	flags.initFlagset(output)

	err := flags.ParseArgs(args)
	if err != nil {
		return nil, err
	}

	return flags, nil
}

func (f *flags) initFlagset(output io.Writer) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(output)
	f.output = output
	fs.Usage = f.usage
	// Commands may contain arguments that look like flags.
	fs.SetInterspersed(false)
	fs.SortFlags = false

	fs.StringVar(
		&f.Runtime,
		"runtime",
		f.Runtime,
		"how QEMU runs: docker, podman or process",
	)

	fs.StringVar(
		&f.Target,
		"target",
		f.Target,
		"name of the container running QEMU (docker and podman runtime)",
	)

	fs.Var(
		&LimitedUintValue{
			Value: &f.PID,
			Lower: 1,
			Upper: pidMax,
		},
		"pid",
		"process ID of QEMU (process runtime)",
	)

	fs.Var(
		&f.ConsoleLog,
		"console-log",
		"host path of the file the guest's serial console is written to",
	)

	fs.Var(
		&f.DiagnosticLog,
		"diagnostic-log",
		"host path of QEMU's own output used for diagnostics (process runtime)",
	)

	fs.Var(
		&LimitedDurationValue{
			Value: &f.BootTimeout,
			Lower: bootIntervalMin,
			Upper: bootTimeoutMax,
		},
		"boot-timeout",
		"time to wait for the guest to boot",
	)

	fs.Var(
		&LimitedDurationValue{
			Value: &f.BootInterval,
			Lower: bootIntervalMin,
		},
		"boot-interval",
		"interval between boot checks",
	)

	fs.StringArrayVar(
		&f.ReadyPatterns,
		"ready-pattern",
		f.ReadyPatterns,
		"regular expression signaling the guest is ready. Flag may be used "+
			"more than once. (default: well known init and login phrases)",
	)

	fs.BoolVar(
		&f.SkipBoot,
		"skip-boot",
		f.SkipBoot,
		"do not wait for the guest to boot",
	)

	fs.StringVar(
		&f.Descriptor,
		"input-descriptor",
		f.Descriptor,
		"file inside the target holding the path of the guest's input device",
	)

	fs.StringVar(
		&f.Pipe,
		"input-pipe",
		f.Pipe,
		"named pipe inside the target commands are relayed from",
	)

	fs.Var(
		&LimitedDurationValue{
			Value: &f.Timeout,
			Lower: timeoutMin,
		},
		"timeout",
		"time a single command may take",
	)

	fs.Var(
		&f.Script,
		"script",
		"YAML file with commands to run",
	)

	fs.Var(
		&f.Fetches,
		"fetch",
		"copy guest file to host after all commands ran. Flag may be used "+
			"more than once. Empty value clears the list.",
	)

	fs.BoolVar(
		&f.Strict,
		"strict",
		f.Strict,
		"fail on commands that exit non-zero or do not finish in time",
	)

	fs.BoolVar(
		&f.Debug,
		"debug",
		f.Debug,
		"enable debug output",
	)

	fs.BoolVar(
		&f.Version,
		"version",
		f.Version,
		"show version and exit",
	)

	f.flagSet = fs
}

func (f *flags) ParseArgs(args []string) error {
	// Parses arguments up to the first one that is not prefixed with a "-" or
	// is "--".
	err := f.flagSet.Parse(args)
	if err != nil {
		return &ParseArgsError{msg: "flag parse", err: err}
	}

	// Version is handled by the caller.
	if f.Version {
		return nil
	}

	if f.ConsoleLog == "" {
		return f.fail("no console log given (use --console-log)", nil)
	}

	switch f.Runtime {
	case target.RuntimeDocker, target.RuntimePodman:
		if f.Target == "" {
			return f.fail("no target container given (use --target)", nil)
		}
	case runtimeProcess:
		if f.PID == 0 {
			return f.fail("no QEMU process given (use --pid)", nil)
		}
	default:
		return f.fail("runtime "+f.Runtime, target.ErrRuntimeNotSupported)
	}

	f.Commands = f.flagSet.Args()

	if len(f.Commands) > 0 && f.Script != "" {
		return f.fail("commands and --script are mutually exclusive", nil)
	}

	return nil
}

// fail fails like flag does. It prints the error first and then usage.
func (f *flags) fail(msg string, err error) error {
	err = &ParseArgsError{msg: msg, err: err}
	fmt.Fprintln(f.output, err.Error())

	f.flagSet.Usage()

	return err
}

func (f *flags) logLevel() slog.Level {
	if f.Debug {
		return slog.LevelDebug
	}

	return slog.LevelWarn
}

func (f *flags) usage() {
	fmt.Fprint(f.output, usageMessage)
	fmt.Fprintln(f.output, "\nFlags:")
	f.flagSet.PrintDefaults()
}
