// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package boot waits for the guest to finish booting.
//
// The [Monitor] polls the guest's console log for ready phrases and falls back
// to the target's general diagnostic output if the console log does not show
// one. It gives up early once the target is not alive anymore.
package boot
