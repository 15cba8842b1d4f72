// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package capture runs shell commands in the guest and captures their output
// from the console log.
//
// Each command is wrapped in an [Envelope] that prints a unique start marker
// before and a unique end marker after the command. The console log is
// followed from its end at the time of the call and a [Scanner] collects the
// lines between the markers. Commands that do not finish within the timeout
// yield the output captured so far.
//
// The [Engine] runs one command at a time. The guest shell and its console are
// shared, so concurrent commands would interleave their output.
package capture
