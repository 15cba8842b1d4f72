// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/aibor/virtbridge/internal/match"
)

const (
	// DefaultPollInterval is the time to wait for new data once the end of
	// the log is reached.
	DefaultPollInterval = 50 * time.Millisecond

	// tailBytes limits how much of the log is read for [Log.Tail].
	tailBytes = 1 << 20
)

// Log is the guest's console log file.
type Log struct {
	Path string

	// PollInterval used by subscriptions. Defaults to [DefaultPollInterval].
	PollInterval time.Duration
}

// New returns a new [Log] for the given path.
func New(path string) *Log {
	return &Log{
		Path:         path,
		PollInterval: DefaultPollInterval,
	}
}

func (l *Log) pollInterval() time.Duration {
	if l.PollInterval <= 0 {
		return DefaultPollInterval
	}

	return l.PollInterval
}

// Offset returns the current end of the log. A log that does not exist yet
// has offset 0.
func (l *Log) Offset() (int64, error) {
	info, err := os.Stat(l.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}

		return 0, &Error{Path: l.Path, Err: err}
	}

	return info.Size(), nil
}

// Tail returns the last n lines of the log with carriage returns removed. A
// log that does not exist yet is empty.
func (l *Log) Tail(n int) ([]string, error) {
	data, err := l.readFrom(-tailBytes)
	if err != nil {
		return nil, err
	}

	return match.Tail(string(data), n), nil
}

// Contains reports if the log contains the given text after the given offset.
func (l *Log) Contains(offset int64, text string) (bool, error) {
	data, err := l.readFrom(offset)
	if err != nil {
		return false, err
	}

	return strings.Contains(match.ScrubCR(string(data)), text), nil
}

// readFrom reads the log from the given offset to its current end. A negative
// offset is relative to the end.
func (l *Log) readFrom(offset int64) ([]byte, error) {
	file, err := os.Open(l.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, &Error{Path: l.Path, Err: err}
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, &Error{Path: l.Path, Err: err}
	}

	size := info.Size()
	if offset < 0 {
		offset = max(size+offset, 0)
	}

	if offset >= size {
		return nil, nil
	}

	data, err := io.ReadAll(io.NewSectionReader(file, offset, size-offset))
	if err != nil {
		return nil, &Error{Path: l.Path, Err: fmt.Errorf("read: %w", err)}
	}

	return data, nil
}

// Subscribe returns a new [Subscription] that follows the log starting at the
// given offset. Following starts once [Subscription.Lines] is iterated.
func (l *Log) Subscribe(ctx context.Context, offset int64) *Subscription {
	return &Subscription{
		ctx:    ctx,
		log:    l,
		offset: offset,
	}
}
