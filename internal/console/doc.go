// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package console provides read access to the guest's serial console log.
//
// The log is an append-only file that is written by the execution environment.
// It is never written by this package. Readers hold a byte offset into the
// log that only ever advances. [Log.Subscribe] follows the log from a given
// offset and yields complete lines as they are appended.
package console
