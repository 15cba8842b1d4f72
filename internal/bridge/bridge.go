// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aibor/virtbridge/internal/target"
	"github.com/google/uuid"
)

const (
	// DefaultDescriptor is the file inside the target that holds the path
	// of the guest's input device.
	DefaultDescriptor = "/tmp/vm-input-device"

	// DefaultPipe is the named pipe commands are written to.
	DefaultPipe = "/tmp/vm-input"

	// DefaultGracePeriod is the time given to the relay to start.
	DefaultGracePeriod = 2 * time.Second

	// DefaultProbeWait is the time given to the probe to show up in the
	// console log.
	DefaultProbeWait = 3 * time.Second
)

// ProbeLog is the console log the self-test probe is looked up in.
type ProbeLog interface {
	Offset() (int64, error)
	Contains(offset int64, text string) (bool, error)
}

// fifoMaker is implemented by targets that can create the pipe directly.
type fifoMaker interface {
	MakeFIFO(path string) error
}

// Bridge sets up the input channel into the guest.
type Bridge struct {
	Target  target.Target
	Console ProbeLog

	// Descriptor is the path of the file holding the input device path.
	// Defaults to [DefaultDescriptor].
	Descriptor string
	// Pipe is the path of the named pipe. Defaults to [DefaultPipe].
	Pipe string
	// GracePeriod given to the relay to start. Defaults to
	// [DefaultGracePeriod].
	GracePeriod time.Duration
	// ProbeWait is the time waited for the probe. Defaults to
	// [DefaultProbeWait].
	ProbeWait time.Duration

	// NewProbe creates the self-test probe token. Defaults to [NewProbe].
	NewProbe func() string
}

// NewProbe returns a unique self-test probe token.
func NewProbe() string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("__TEST_%d_%s__", time.Now().Unix(), random)
}

func (b *Bridge) setDefaults() {
	if b.Descriptor == "" {
		b.Descriptor = DefaultDescriptor
	}

	if b.Pipe == "" {
		b.Pipe = DefaultPipe
	}

	if b.GracePeriod <= 0 {
		b.GracePeriod = DefaultGracePeriod
	}

	if b.ProbeWait <= 0 {
		b.ProbeWait = DefaultProbeWait
	}

	if b.NewProbe == nil {
		b.NewProbe = NewProbe
	}
}

// Setup establishes the relay and verifies it end to end. It fails fast on
// each step and returns a [*SetupError]. A relay process that can not be
// found after launch only results in a warning.
func (b *Bridge) Setup(ctx context.Context) (*Channel, error) {
	b.setDefaults()

	device, err := b.readDevice(ctx)
	if err != nil {
		return nil, err
	}

	slog.Debug("Guest input device found", slog.String("device", device))

	err = b.makePipe(ctx)
	if err != nil {
		return nil, &SetupError{Step: "create pipe", Err: err}
	}

	err = b.exec(ctx, launchRelayScript(b.Pipe, device))
	if err != nil {
		return nil, &SetupError{Step: "launch relay", Err: err}
	}

	err = sleep(ctx, b.GracePeriod)
	if err != nil {
		return nil, &SetupError{Step: "launch relay", Err: err}
	}

	channel := &Channel{
		target: b.Target,
		pipe:   b.Pipe,
		device: device,
	}

	err = b.exec(ctx, relayRunningScript(b.Pipe))
	if err != nil {
		channel.degraded = true

		slog.Warn("Relay degraded, relying on self-test",
			slog.String("pipe", b.Pipe),
			slog.Any("error", fmt.Errorf("%w: %w", ErrRelayNotRunning, err)))
	}

	err = b.selfTest(ctx, channel)
	if err != nil {
		return nil, &SetupError{Step: "self-test", Err: err}
	}

	slog.Debug("Relay verified",
		slog.String("pipe", b.Pipe),
		slog.String("device", device))

	return channel, nil
}

func (b *Bridge) readDevice(ctx context.Context) (string, error) {
	_, status, err := b.Target.Exec(ctx, descriptorCheckScript(b.Descriptor))
	if err != nil {
		return "", &SetupError{Step: "check descriptor", Err: err}
	}

	if status != 0 {
		return "", &SetupError{
			Step: "check descriptor",
			Err:  fmt.Errorf("%w: %s", ErrNoInputDevice, b.Descriptor),
		}
	}

	out, status, err := b.Target.Exec(ctx, readDescriptorScript(b.Descriptor))
	if err != nil {
		return "", &SetupError{Step: "read descriptor", Err: err}
	}

	if status != 0 {
		return "", &SetupError{
			Step: "read descriptor",
			Err:  fmt.Errorf("exit status %d: %s", status, strings.TrimSpace(out)),
		}
	}

	device := strings.TrimSpace(out)
	if device == "" {
		return "", &SetupError{Step: "read descriptor", Err: ErrEmptyDevicePath}
	}

	return device, nil
}

func (b *Bridge) makePipe(ctx context.Context) error {
	if maker, ok := b.Target.(fifoMaker); ok {
		return maker.MakeFIFO(b.Pipe) //nolint:wrapcheck
	}

	return b.exec(ctx, makePipeScript(b.Pipe))
}

func (b *Bridge) selfTest(ctx context.Context, channel *Channel) error {
	probe := b.NewProbe()

	offset, err := b.Console.Offset()
	if err != nil {
		return fmt.Errorf("console offset: %w", err)
	}

	err = channel.Send(ctx, "echo "+spellProbe(probe))
	if err != nil {
		return fmt.Errorf("send probe: %w", err)
	}

	err = sleep(ctx, b.ProbeWait)
	if err != nil {
		return err
	}

	found, err := b.Console.Contains(offset, probe)
	if err != nil {
		return fmt.Errorf("read console log: %w", err)
	}

	if !found {
		return fmt.Errorf("%w: %s", ErrSelfTestFailed, probe)
	}

	return nil
}

// spellProbe splits the probe into two quoted words the shell concatenates, so
// only the shell's output contains the probe and not the terminal's echo.
func spellProbe(probe string) string {
	return "'" + probe[:2] + "''" + probe[2:] + "'"
}

// exec runs the script and treats a non-zero exit status as error.
func (b *Bridge) exec(ctx context.Context, script string) error {
	out, status, err := b.Target.Exec(ctx, script)
	if err != nil {
		return err //nolint:wrapcheck
	}

	if status != 0 {
		return fmt.Errorf("exit status %d: %s", status, strings.TrimSpace(out))
	}

	return nil
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
