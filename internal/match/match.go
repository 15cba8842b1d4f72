// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package match

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// DefaultWindow is the number of trailing lines inspected by default.
const DefaultWindow = 200

// ErrNoPatterns is returned if a [Matcher] is created without any pattern.
var ErrNoPatterns = errors.New("no patterns given")

// DefaultReadyPatterns are phrases a guest prints once it accepts commands on
// its console.
var DefaultReadyPatterns = []string{
	`login:`,
	`Welcome to `,
	`Reached target .*Multi-User System`,
	`Startup finished in `,
	`Run /init as init process`,
}

// Matcher reports if any line of a window matches one of its patterns.
type Matcher struct {
	patterns []string
	re       *regexp.Regexp
}

// NewMatcher compiles the given patterns into a single alternation.
func NewMatcher(patterns ...string) (*Matcher, error) {
	if len(patterns) == 0 {
		return nil, ErrNoPatterns
	}

	parts := make([]string, 0, len(patterns))

	for _, pattern := range patterns {
		_, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", pattern, err)
		}

		parts = append(parts, "(?:"+pattern+")")
	}

	return &Matcher{
		patterns: patterns,
		re:       regexp.MustCompile(strings.Join(parts, "|")),
	}, nil
}

// MustNewMatcher is like [NewMatcher] but panics on error.
func MustNewMatcher(patterns ...string) *Matcher {
	m, err := NewMatcher(patterns...)
	if err != nil {
		panic(err)
	}

	return m
}

// Patterns returns the patterns the [Matcher] was created with.
func (m *Matcher) Patterns() []string {
	return m.patterns
}

// Match returns the first line matching any of the patterns. Lines are
// normalized with [ScrubCR] before matching.
func (m *Matcher) Match(lines []string) (string, bool) {
	for _, line := range lines {
		line = ScrubCR(line)
		if m.re.MatchString(line) {
			return line, true
		}
	}

	return "", false
}

// MatchText splits the text into lines and matches the last window lines.
func (m *Matcher) MatchText(text string, window int) (string, bool) {
	return m.Match(Tail(text, window))
}

// Contains reports if any of the lines contains the given marker.
func Contains(lines []string, marker string) bool {
	for _, line := range lines {
		if strings.Contains(line, marker) {
			return true
		}
	}

	return false
}

// ScrubCR removes all carriage returns from the line.
func ScrubCR(line string) string {
	return strings.ReplaceAll(line, "\r", "")
}

// Lines splits the text into lines with carriage returns removed. A trailing
// line break does not produce an empty last line.
func Lines(text string) []string {
	text = ScrubCR(text)
	text = strings.TrimSuffix(text, "\n")

	if text == "" {
		return nil
	}

	return strings.Split(text, "\n")
}

// Tail returns the last n lines of the text. If n is not positive, all lines
// are returned.
func Tail(text string, n int) []string {
	return TailLines(Lines(text), n)
}

// TailLines returns the last n elements of lines. If n is not positive, all
// lines are returned.
func TailLines(lines []string, n int) []string {
	if n <= 0 || len(lines) <= n {
		return lines
	}

	return lines[len(lines)-n:]
}
