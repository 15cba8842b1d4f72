// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package target provides access to the execution environment the guest
// virtual machine runs in.
//
// A [Target] can report if it is still alive, execute shell scripts inside the
// environment and return its recent diagnostic output. [Container] talks to a
// docker or podman container via the CLI, [Process] wraps a QEMU process
// running on the local host.
package target
