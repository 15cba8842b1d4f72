// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session ties boot readiness, the input bridge and command capture
// together for a single guest.
//
// A [Session] is owned by its caller. It is opened once per guest: the boot
// is awaited, the relay is set up and verified, and then commands are run
// one after the other through [Session.Run].
package session
