// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package exitcode_test

import (
	"testing"

	"github.com/aibor/virtbridge/internal/exitcode"
	"github.com/stretchr/testify/assert"
)

const marker = "__END_123__"

func TestSprint(t *testing.T) {
	tests := []struct {
		exitcode int
		expected string
	}{
		{0, marker + " 0"},
		{1, marker + " 1"},
		{127, marker + " 127"},
	}

	for _, tt := range tests {
		actual := exitcode.Sprint(marker, tt.exitcode)
		assert.Equal(t, tt.expected, actual)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    int
		assertFound assert.BoolAssertionFunc
	}{
		{
			name:        "empty input",
			assertFound: assert.False,
		},
		{
			name:        "marker without trailer",
			input:       marker,
			assertFound: assert.False,
		},
		{
			name:        "marker with non numeric trailer",
			input:       marker + " done",
			assertFound: assert.False,
		},
		{
			name:        "matching input zero",
			input:       exitcode.Sprint(marker, 0),
			assertFound: assert.True,
		},
		{
			name:        "matching input",
			input:       exitcode.Sprint(marker, 42),
			expected:    42,
			assertFound: assert.True,
		},
		{
			name:        "marker not at start",
			input:       "\x1b[0m" + marker + " 1 ",
			expected:    1,
			assertFound: assert.True,
		},
		{
			name:        "other marker",
			input:       "__END_124__ 3",
			assertFound: assert.False,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual, found := exitcode.Parse(tt.input, marker)
			tt.assertFound(t, found)

			assert.Equal(t, tt.expected, actual)
		})
	}
}
