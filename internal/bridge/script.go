// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bridge

import (
	"fmt"
	"strings"
)

// relayTag is passed as $0 to the relay shell, so the relay process can be
// found by its command line.
const relayTag = "virtbridge-relay"

// Quote quotes the string as a single word for POSIX shells.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func descriptorCheckScript(descriptor string) string {
	return "test -f " + Quote(descriptor)
}

func readDescriptorScript(descriptor string) string {
	return "cat " + Quote(descriptor)
}

func makePipeScript(pipe string) string {
	q := Quote(pipe)
	return fmt.Sprintf("[ -p %s ] || mkfifo %s; chmod 0666 %s", q, q, q)
}

// relayLoop copies the pipe into the device as long as both exist. It never
// terminates on its own.
func relayLoop(pipe, device string) string {
	p, d := Quote(pipe), Quote(device)

	return fmt.Sprintf(
		"while true; do if [ -p %s ] && [ -c %s ]; then cat %s > %s; else sleep 1; fi; done",
		p, d, p, d,
	)
}

func launchRelayScript(pipe, device string) string {
	return fmt.Sprintf(
		"nohup sh -c %s %s </dev/null >/dev/null 2>&1 &",
		Quote(relayLoop(pipe, device)), Quote(relayTag+":"+pipe),
	)
}

// relayRunningScript finds the relay by its tag. The bracket keeps the pattern
// from matching the shell running pgrep.
func relayRunningScript(pipe string) string {
	pattern := "[" + relayTag[:1] + "]" + relayTag[1:] + ":" + pipe
	return "pgrep -f " + Quote(pattern) + " >/dev/null"
}

func sendScript(pipe, line string) string {
	return fmt.Sprintf("printf '%%s\\n' %s > %s", Quote(line), Quote(pipe))
}
