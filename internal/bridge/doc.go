// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package bridge establishes the input channel into the guest.
//
// The guest's console input is a character device inside the target. A named
// pipe is created next to it and a detached relay loop copies everything
// written into the pipe to the device. Once set up, the relay is verified with
// a self-test: a probe is echoed through the pipe and must show up in the
// console log.
//
// The relay is not supervised. If it dies, writes through the [Channel] are
// not delivered and command captures run into their timeout.
package bridge
