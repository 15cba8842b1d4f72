// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package pipe provides the transport of encoded data between host and guest.
// It is intended to provide safe transmission of binary data over the guest's
// serial console, which is line based and only safe for printable text.
package pipe
