// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package exitcode

import (
	"strconv"
	"strings"
)

// ShellTrailer is appended to the shell command printing the end marker. It
// expands to the exit status of the preceding command.
const ShellTrailer = ` "$?"`

// Sprint returns the line the guest prints for the given marker and exit code.
func Sprint(marker string, exitCode int) string {
	return marker + " " + strconv.Itoa(exitCode)
}

// Parse parses the exit code trailing the marker in the given line.
//
// The marker can be anywhere in the line. Returns the exit code and whether
// it was found. A line with the marker but without valid trailer returns
// false.
func Parse(line, marker string) (int, bool) {
	start := strings.Index(line, marker)
	if start < 0 {
		return 0, false
	}

	rest, found := strings.CutPrefix(line[start+len(marker):], " ")
	if !found {
		return 0, false
	}

	end := strings.IndexFunc(rest, func(r rune) bool {
		return r < '0' || r > '9'
	})
	if end < 0 {
		end = len(rest)
	}

	exitCode, err := strconv.Atoi(rest[:end])
	if err != nil {
		return 0, false
	}

	return exitCode, true
}
