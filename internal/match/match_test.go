// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package match_test

import (
	"strings"
	"testing"

	"github.com/aibor/virtbridge/internal/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMatcher(t *testing.T) {
	t.Run("no patterns", func(t *testing.T) {
		_, err := match.NewMatcher()
		require.ErrorIs(t, err, match.ErrNoPatterns)
	})

	t.Run("invalid pattern", func(t *testing.T) {
		_, err := match.NewMatcher("login:", "(")
		require.Error(t, err)
	})

	t.Run("defaults", func(t *testing.T) {
		m, err := match.NewMatcher(match.DefaultReadyPatterns...)
		require.NoError(t, err)
		assert.Equal(t, match.DefaultReadyPatterns, m.Patterns())
	})
}

func TestMatcher_Match(t *testing.T) {
	m := match.MustNewMatcher(match.DefaultReadyPatterns...)

	tests := []struct {
		name     string
		lines    []string
		expected string
		assert   assert.BoolAssertionFunc
	}{
		{
			name:   "empty",
			assert: assert.False,
		},
		{
			name: "kernel chatter only",
			lines: []string{
				"[    0.000000] Linux version 6.1.0",
				"[    0.120000] virtio_blk virtio0: [vda] 2097152 512-byte",
			},
			assert: assert.False,
		},
		{
			name: "login prompt with carriage return",
			lines: []string{
				"[    1.000000] random: crng init done",
				"buildroot login: \r",
			},
			expected: "buildroot login: ",
			assert:   assert.True,
		},
		{
			name: "systemd target",
			lines: []string{
				"[  OK  ] Reached target Multi-User System.",
			},
			expected: "[  OK  ] Reached target Multi-User System.",
			assert:   assert.True,
		},
		{
			name: "case sensitive",
			lines: []string{
				"LOGIN:",
				"welcome to nowhere",
			},
			assert: assert.False,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual, found := m.Match(tt.lines)
			tt.assert(t, found)
			assert.Equal(t, tt.expected, actual)
		})
	}
}

func TestMatcher_MatchText(t *testing.T) {
	m := match.MustNewMatcher("login:")

	text := "ttyS0 login:\n" + strings.Repeat("noise\n", 10)

	_, found := m.MatchText(text, 5)
	assert.False(t, found, "phrase outside of window")

	line, found := m.MatchText(text, 11)
	assert.True(t, found, "phrase inside of window")
	assert.Equal(t, "ttyS0 login:", line)
}

func TestContains(t *testing.T) {
	lines := []string{"echo x", "__START_1__", "out"}

	assert.True(t, match.Contains(lines, "__START_1__"))
	assert.False(t, match.Contains(lines, "__START_2__"))
	assert.False(t, match.Contains(nil, "__START_1__"))
}

func TestTail(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		n        int
		expected []string
	}{
		{
			name: "empty",
		},
		{
			name:     "crlf",
			text:     "one\r\ntwo\r\nthree\r\n",
			n:        2,
			expected: []string{"two", "three"},
		},
		{
			name:     "window larger than text",
			text:     "one\ntwo",
			n:        100,
			expected: []string{"one", "two"},
		},
		{
			name:     "non positive window",
			text:     "one\ntwo\n",
			expected: []string{"one", "two"},
		},
		{
			name:     "empty lines kept",
			text:     "one\n\ntwo\n",
			n:        2,
			expected: []string{"", "two"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, match.Tail(tt.text, tt.n))
		})
	}
}

func TestLines(t *testing.T) {
	assert.Nil(t, match.Lines(""))
	assert.Nil(t, match.Lines("\r\n"))
	assert.Equal(t, []string{"a", "", "b"}, match.Lines("a\r\n\r\nb"))
	assert.Equal(t, "login: ", match.ScrubCR("\rlogin: \r"))
}

func TestTailLines(t *testing.T) {
	lines := []string{"a", "b", "c"}

	assert.Equal(t, lines, match.TailLines(lines, 0))
	assert.Equal(t, lines, match.TailLines(lines, 5))
	assert.Equal(t, []string{"c"}, match.TailLines(lines, 1))
}
