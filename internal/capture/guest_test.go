// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package capture_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aibor/virtbridge/internal/capture"
	"github.com/aibor/virtbridge/internal/console"
	"github.com/stretchr/testify/require"
)

func appendFile(path, data string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.WriteString(data)

	return err
}

// shellGuest emulates a guest with a serial console. Lines sent are echoed
// like a terminal does, run with the local shell and their output is
// appended with CRLF line endings.
type shellGuest struct {
	log string

	mu        sync.Mutex
	active    int
	maxActive int
	sent      []string
}

func (g *shellGuest) Send(ctx context.Context, line string) error {
	g.mu.Lock()
	g.active++
	g.maxActive = max(g.maxActive, g.active)
	g.sent = append(g.sent, line)
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		g.active--
		g.mu.Unlock()
	}()

	err := appendFile(g.log, "~ # "+line+"\r\n")
	if err != nil {
		return err
	}

	out, err := exec.CommandContext(ctx, "sh", "-c", line).Output()
	if err != nil {
		return err
	}

	return appendFile(g.log, strings.ReplaceAll(string(out), "\n", "\r\n"))
}

// senderFunc adapts a function to [capture.Sender].
type senderFunc func(ctx context.Context, line string) error

func (f senderFunc) Send(ctx context.Context, line string) error {
	return f(ctx, line)
}

func newConsole(t *testing.T) *console.Log {
	t.Helper()

	log := console.New(filepath.Join(t.TempDir(), "console.log"))
	log.PollInterval = time.Millisecond

	return log
}

func newShellEngine(t *testing.T) (*capture.Engine, *shellGuest) {
	t.Helper()

	log := newConsole(t)
	require.NoError(t, appendFile(log.Path, "[    1.234] booted\r\n~ # "))

	guest := &shellGuest{log: log.Path}
	engine := &capture.Engine{
		Channel:     guest,
		Console:     log,
		Timeout:     5 * time.Second,
		AttachDelay: time.Millisecond,
	}

	return engine, guest
}
