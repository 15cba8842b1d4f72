// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package target

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
)

// Supported container runtimes.
const (
	RuntimeDocker = "docker"
	RuntimePodman = "podman"
)

// Container is a [Target] running as docker or podman container. All
// interaction happens via the runtime's CLI.
type Container struct {
	name    string
	runtime string

	// Shell used for running scripts inside the container.
	Shell string

	// Runner used for invoking the runtime CLI. Defaults to [ExecRunner].
	Runner Runner
}

var _ Target = (*Container)(nil)

// NewContainer creates a new [Container] target for the given runtime and
// container name.
func NewContainer(runtime, name string) (*Container, error) {
	if !slices.Contains([]string{RuntimeDocker, RuntimePodman}, runtime) {
		return nil, fmt.Errorf("%w: %s", ErrRuntimeNotSupported, runtime)
	}

	if name == "" {
		return nil, ErrEmptyName
	}

	return &Container{
		name:    name,
		runtime: runtime,
		Shell:   "sh",
		Runner:  ExecRunner,
	}, nil
}

// Name implements [Target].
func (c *Container) Name() string {
	return c.name
}

// Alive implements [Target].
func (c *Container) Alive(ctx context.Context) bool {
	out, status, err := c.Runner(ctx, c.runtime,
		"inspect", "--format", "{{.State.Running}}", c.name)
	if err != nil || status != 0 {
		slog.Debug("Container inspect failed",
			slog.String("target", c.name),
			slog.Int("status", status),
			slog.Any("error", err))

		return false
	}

	return strings.TrimSpace(string(out)) == "true"
}

// Exec implements [Target].
func (c *Container) Exec(ctx context.Context, script string) (string, int, error) {
	out, status, err := c.Runner(ctx, c.runtime,
		"exec", c.name, c.Shell, "-c", script)
	if err != nil {
		return string(out), status, &Error{Name: c.name, Err: err}
	}

	return string(out), status, nil
}

// RecentOutput implements [Target].
func (c *Container) RecentOutput(ctx context.Context, lines int) (string, error) {
	out, status, err := c.Runner(ctx, c.runtime,
		"logs", "--tail", strconv.Itoa(lines), c.name)
	if err != nil {
		return "", &Error{Name: c.name, Err: err}
	}

	if status != 0 {
		return "", &Error{
			Name: c.name,
			Err:  fmt.Errorf("logs exited with %d: %s", status, strings.TrimSpace(string(out))),
		}
	}

	return string(out), nil
}
