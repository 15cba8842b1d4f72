// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

var ErrValueOutOfRange = errors.New("value is outside of range")

// LimitedUintValue is a flag value for unsigned integers within the
// inclusive bounds. A zero bound is not checked.
type LimitedUintValue struct {
	Value        *uint64
	Lower, Upper uint64
}

func (u *LimitedUintValue) String() string {
	if u.Value == nil {
		return "0"
	}

	return strconv.FormatUint(*u.Value, 10)
}

func (u *LimitedUintValue) Set(s string) error {
	value, err := strconv.ParseUint(s, 10, 0)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	if u.Lower > 0 && value < u.Lower {
		return fmt.Errorf("%d < %d: %w", value, u.Lower, ErrValueOutOfRange)
	}

	if u.Upper > 0 && value > u.Upper {
		return fmt.Errorf("%d > %d: %w", value, u.Upper, ErrValueOutOfRange)
	}

	*u.Value = value

	return nil
}

func (*LimitedUintValue) Type() string {
	return "uint"
}

// LimitedDurationValue is a flag value for durations within the inclusive
// bounds. A zero bound is not checked.
type LimitedDurationValue struct {
	Value        *time.Duration
	Lower, Upper time.Duration
}

func (d *LimitedDurationValue) String() string {
	if d.Value == nil {
		return "0s"
	}

	return d.Value.String()
}

func (d *LimitedDurationValue) Set(s string) error {
	value, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	if d.Lower > 0 && value < d.Lower {
		return fmt.Errorf("%s < %s: %w", value, d.Lower, ErrValueOutOfRange)
	}

	if d.Upper > 0 && value > d.Upper {
		return fmt.Errorf("%s > %s: %w", value, d.Upper, ErrValueOutOfRange)
	}

	*d.Value = value

	return nil
}

func (*LimitedDurationValue) Type() string {
	return "duration"
}
