// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package session_test

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aibor/virtbridge/internal/boot"
	"github.com/aibor/virtbridge/internal/bridge"
	"github.com/aibor/virtbridge/internal/session"
	"github.com/aibor/virtbridge/internal/target"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPipe = "/run/vm-input"

func appendFile(path, data string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.WriteString(data)

	return err
}

// fakeGuest is a target with a guest shell behind its relay. Lines written
// into the pipe are echoed into the console log, run with the local shell and
// their output is appended to the console log.
type fakeGuest struct {
	consoleLog string

	dead         atomic.Bool
	noDescriptor bool
	relayBroken  atomic.Bool
	diagnostics  string
}

func (*fakeGuest) Name() string {
	return "fake"
}

func (g *fakeGuest) Alive(_ context.Context) bool {
	return !g.dead.Load()
}

func (g *fakeGuest) Exec(ctx context.Context, script string) (string, int, error) {
	switch {
	case strings.HasPrefix(script, "test -f "):
		if g.noDescriptor {
			return "", 1, nil
		}
	case strings.HasPrefix(script, "cat "):
		return "/dev/ttyS0\n", 0, nil
	case strings.HasPrefix(script, "printf "):
		if g.relayBroken.Load() {
			<-ctx.Done()
			return "", -1, ctx.Err()
		}

		return "", 0, g.relay(ctx, script)
	}

	return "", 0, nil
}

// relay runs the printf part of the send script to get the line back.
func (g *fakeGuest) relay(ctx context.Context, script string) error {
	printf := strings.TrimSuffix(script, " > "+bridge.Quote(testPipe))

	line, err := exec.CommandContext(ctx, "sh", "-c", printf).Output()
	if err != nil {
		return err
	}

	err = appendFile(g.consoleLog, "~ # "+strings.ReplaceAll(string(line), "\n", "\r\n"))
	if err != nil {
		return err
	}

	out, err := exec.CommandContext(ctx, "sh", "-c", string(line)).Output()
	if err != nil {
		return err
	}

	return appendFile(g.consoleLog, strings.ReplaceAll(string(out), "\n", "\r\n"))
}

func (g *fakeGuest) RecentOutput(_ context.Context, _ int) (string, error) {
	return g.diagnostics, nil
}

func newGuest(t *testing.T, consoleOutput string) *fakeGuest {
	t.Helper()

	guest := &fakeGuest{
		consoleLog: filepath.Join(t.TempDir(), "console.log"),
	}

	if consoleOutput != "" {
		require.NoError(t, appendFile(guest.consoleLog, consoleOutput))
	}

	return guest
}

func testConfig(guest *fakeGuest) session.Config {
	cfg := session.Defaults()
	cfg.ConsoleLog = guest.consoleLog
	cfg.Pipe = testPipe
	cfg.BootTimeout = 100 * time.Millisecond
	cfg.BootInterval = 10 * time.Millisecond
	cfg.GracePeriod = time.Millisecond
	cfg.ProbeWait = 50 * time.Millisecond
	cfg.CommandTimeout = 5 * time.Second
	cfg.AttachDelay = time.Millisecond
	cfg.PollInterval = time.Millisecond

	return cfg
}

func TestOpen(t *testing.T) {
	t.Run("run commands", func(t *testing.T) {
		guest := newGuest(t, "[    2.1] Run /init as init process\r\n~ # ")

		sess, err := session.Open(t.Context(), guest, testConfig(guest))
		require.NoError(t, err)

		assert.Equal(t, "/dev/ttyS0", sess.Channel().Device())
		assert.Equal(t, testPipe, sess.Channel().Pipe())

		result, err := sess.Run(t.Context(), "echo hello; echo world")
		require.NoError(t, err)
		assert.True(t, result.Complete)
		assert.Equal(t, []string{"hello", "world"}, result.Lines)

		result, err = sess.RunTimeout(t.Context(), "exit_code() { return 4; }; exit_code", time.Second)
		require.NoError(t, err)
		assert.True(t, result.Complete)
		assert.Empty(t, result.Lines)
		assert.Equal(t, 4, result.ExitCode)

		assert.Contains(t, sess.Diagnostics(8), "world")
	})

	t.Run("skip boot", func(t *testing.T) {
		guest := newGuest(t, "")
		cfg := testConfig(guest)
		cfg.SkipBoot = true

		sess, err := session.Open(t.Context(), guest, cfg)
		require.NoError(t, err)

		result, err := sess.Run(t.Context(), "echo ok")
		require.NoError(t, err)
		assert.Equal(t, []string{"ok"}, result.Lines)
	})

	t.Run("skip boot dead target", func(t *testing.T) {
		guest := newGuest(t, "")
		guest.dead.Store(true)

		cfg := testConfig(guest)
		cfg.SkipBoot = true

		_, err := session.Open(t.Context(), guest, cfg)
		require.ErrorIs(t, err, target.ErrTargetDead)
	})

	t.Run("boot timeout", func(t *testing.T) {
		guest := newGuest(t, "[    0.0] Linux version\r\n")
		guest.diagnostics = "qemu: starting\nkernel panic\n"

		_, err := session.Open(t.Context(), guest, testConfig(guest))
		require.ErrorIs(t, err, boot.ErrTimeout)

		var bootErr *boot.Error
		require.ErrorAs(t, err, &bootErr)
		assert.Equal(t, []string{"qemu: starting", "kernel panic"}, bootErr.Diagnostics)
	})

	t.Run("target dead during boot", func(t *testing.T) {
		guest := newGuest(t, "")
		guest.dead.Store(true)

		_, err := session.Open(t.Context(), guest, testConfig(guest))
		require.ErrorIs(t, err, boot.ErrTargetDead)
	})

	t.Run("invalid ready pattern", func(t *testing.T) {
		guest := newGuest(t, "login:\n")
		cfg := testConfig(guest)
		cfg.ReadyPatterns = []string{"("}

		_, err := session.Open(t.Context(), guest, cfg)
		require.Error(t, err)
	})

	t.Run("missing descriptor", func(t *testing.T) {
		guest := newGuest(t, "login:\n")
		guest.noDescriptor = true

		_, err := session.Open(t.Context(), guest, testConfig(guest))
		require.ErrorIs(t, err, &bridge.SetupError{})
		require.ErrorIs(t, err, bridge.ErrNoInputDevice)
	})

	t.Run("self-test fails", func(t *testing.T) {
		guest := newGuest(t, "login:\n")
		guest.relayBroken.Store(true)

		ctx, cancel := context.WithTimeout(t.Context(), 200*time.Millisecond)
		defer cancel()

		_, err := session.Open(ctx, guest, testConfig(guest))
		require.ErrorIs(t, err, &bridge.SetupError{})
	})

	t.Run("no console log", func(t *testing.T) {
		guest := newGuest(t, "")
		cfg := testConfig(guest)
		cfg.ConsoleLog = ""

		_, err := session.Open(t.Context(), guest, cfg)
		require.ErrorIs(t, err, session.ErrNoConsoleLog)
	})

	t.Run("no target", func(t *testing.T) {
		_, err := session.Open(t.Context(), nil, session.Defaults())
		require.ErrorIs(t, err, session.ErrNoTarget)
	})
}

func TestSession_RelayDiesLater(t *testing.T) {
	guest := newGuest(t, "login:\n")

	sess, err := session.Open(t.Context(), guest, testConfig(guest))
	require.NoError(t, err)

	guest.relayBroken.Store(true)

	result, err := sess.RunTimeout(t.Context(), "echo lost", 50*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, result.Complete)
	assert.Empty(t, result.Lines)
}

func TestSession_Transfer(t *testing.T) {
	guest := newGuest(t, "login:\n")

	sess, err := session.Open(t.Context(), guest, testConfig(guest))
	require.NoError(t, err)

	data := bytes.Repeat([]byte("virtbridge\x00\xff"), 300)
	path := filepath.Join(t.TempDir(), "file")

	require.NoError(t, sess.Push(t.Context(), bytes.NewReader(data), path))

	var buf bytes.Buffer

	n, err := sess.Fetch(t.Context(), path, &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), n)
	assert.Equal(t, data, buf.Bytes())
}
