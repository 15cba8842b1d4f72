// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bridge

import (
	"context"
	"fmt"
	"strings"

	"github.com/aibor/virtbridge/internal/target"
)

// Channel is the verified input channel into the guest. Writes are fire and
// forget, the guest does not acknowledge anything.
type Channel struct {
	target target.Target
	pipe   string
	device string

	degraded bool
}

// Degraded reports if the relay process was not found after launch.
func (c *Channel) Degraded() bool {
	return c.degraded
}

// Pipe returns the path of the named pipe inside the target.
func (c *Channel) Pipe() string {
	return c.pipe
}

// Device returns the path of the guest's input device inside the target.
func (c *Channel) Device() string {
	return c.device
}

// Send writes the line into the pipe. It blocks until the relay has read it
// or the context is done. A line containing line breaks is rejected, since
// the guest shell would run it as multiple commands.
func (c *Channel) Send(ctx context.Context, line string) error {
	if strings.ContainsAny(line, "\r\n") {
		return fmt.Errorf("send: %w", ErrMultiLine)
	}

	out, status, err := c.target.Exec(ctx, sendScript(c.pipe, line))
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}

	if status != 0 {
		return fmt.Errorf("send: exit status %d: %s", status, strings.TrimSpace(out))
	}

	return nil
}
