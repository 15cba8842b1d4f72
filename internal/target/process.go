// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package target

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/aibor/virtbridge/internal/match"
	"golang.org/x/sys/unix"
)

// tailBytes limits how much of the diagnostic log is read for
// [Process.RecentOutput].
const tailBytes = 256 * 1024

// Process is a [Target] for a QEMU process running on the local host. Scripts
// are run on the host itself, so the guest's input device must be reachable
// from there.
type Process struct {
	pid int

	// DiagnosticLog is the file QEMU's stderr is written to. Optional.
	DiagnosticLog string

	// Shell used for running scripts.
	Shell string

	// Runner used for running scripts. Defaults to [ExecRunner].
	Runner Runner
}

var _ Target = (*Process)(nil)

// NewProcess creates a new [Process] target for the given process ID.
func NewProcess(pid int, diagnosticLog string) (*Process, error) {
	if pid <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPID, pid)
	}

	return &Process{
		pid:           pid,
		DiagnosticLog: diagnosticLog,
		Shell:         "sh",
		Runner:        ExecRunner,
	}, nil
}

// Name implements [Target].
func (p *Process) Name() string {
	return "pid:" + strconv.Itoa(p.pid)
}

// Alive implements [Target].
//
// Signal 0 performs the permission and existence checks without sending a
// signal. EPERM means the process exists but belongs to someone else.
func (p *Process) Alive(_ context.Context) bool {
	err := unix.Kill(p.pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}

// Exec implements [Target].
func (p *Process) Exec(ctx context.Context, script string) (string, int, error) {
	out, status, err := p.Runner(ctx, p.Shell, "-c", script)
	if err != nil {
		return string(out), status, &Error{Name: p.Name(), Err: err}
	}

	return string(out), status, nil
}

// RecentOutput implements [Target].
//
// Without a diagnostic log, the output is empty.
func (p *Process) RecentOutput(_ context.Context, lines int) (string, error) {
	if p.DiagnosticLog == "" {
		return "", nil
	}

	data, err := readTail(p.DiagnosticLog, tailBytes)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}

		return "", &Error{Name: p.Name(), Err: err}
	}

	tail := match.Tail(string(data), lines)
	if len(tail) == 0 {
		return "", nil
	}

	return strings.Join(tail, "\n") + "\n", nil
}

// MakeFIFO creates the named pipe directly on the host instead of via a
// script. See [MakeFIFO].
func (p *Process) MakeFIFO(path string) error {
	return MakeFIFO(path)
}

// MakeFIFO creates a named pipe at path with permissions that allow any
// process to write into it. An existing named pipe is kept.
func MakeFIFO(path string) error {
	var stat unix.Stat_t

	err := unix.Stat(path, &stat)
	switch {
	case err == nil && stat.Mode&unix.S_IFMT == unix.S_IFIFO:
	case err == nil:
		return fmt.Errorf("%s: %w", path, unix.EEXIST)
	case errors.Is(err, unix.ENOENT):
		err = unix.Mkfifo(path, 0o666)
		if err != nil {
			return fmt.Errorf("mkfifo %s: %w", path, err)
		}
	default:
		return fmt.Errorf("stat %s: %w", path, err)
	}

	// Mkfifo is subject to the umask, so set the mode explicitly.
	err = unix.Chmod(path, 0o666)
	if err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}

	return nil
}

func readTail(path string, limit int64) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}

	offset := max(info.Size()-limit, 0)

	data, err := io.ReadAll(io.NewSectionReader(file, offset, info.Size()-offset))
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	return data, nil
}
