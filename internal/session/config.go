// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"errors"
	"time"

	"github.com/aibor/virtbridge/internal/boot"
	"github.com/aibor/virtbridge/internal/bridge"
	"github.com/aibor/virtbridge/internal/capture"
	"github.com/aibor/virtbridge/internal/match"
)

var (
	ErrNoTarget     = errors.New("no target")
	ErrNoConsoleLog = errors.New("no console log")
)

// Config is the configuration of a [Session]. Zero values use the defaults of
// the respective packages.
type Config struct {
	// ConsoleLog is the host path of the guest's serial console log.
	ConsoleLog string

	// ReadyPatterns are the regular expressions signaling the guest is
	// ready. Defaults to [match.DefaultReadyPatterns].
	ReadyPatterns []string
	BootTimeout   time.Duration
	BootInterval  time.Duration
	// SkipBoot skips waiting for the ready signal. The target must be alive
	// anyway.
	SkipBoot bool

	Descriptor  string
	Pipe        string
	GracePeriod time.Duration
	ProbeWait   time.Duration

	CommandTimeout time.Duration
	AttachDelay    time.Duration

	// PollInterval of the console log subscriptions.
	PollInterval time.Duration
}

// Defaults returns a [Config] with all defaults set explicitly.
func Defaults() Config {
	return Config{
		ReadyPatterns:  match.DefaultReadyPatterns,
		BootTimeout:    boot.DefaultTimeout,
		BootInterval:   boot.DefaultInterval,
		Descriptor:     bridge.DefaultDescriptor,
		Pipe:           bridge.DefaultPipe,
		GracePeriod:    bridge.DefaultGracePeriod,
		ProbeWait:      bridge.DefaultProbeWait,
		CommandTimeout: capture.DefaultTimeout,
		AttachDelay:    capture.DefaultAttachDelay,
	}
}
