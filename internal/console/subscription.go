// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"
	"time"
)

// Subscription follows a [Log] from an offset.
type Subscription struct {
	ctx    context.Context //nolint:containedctx
	log    *Log
	offset int64
	err    error
}

// Offset returns the offset right after the last line yielded so far.
func (s *Subscription) Offset() int64 {
	return s.offset
}

// Err returns the error that terminated the sequence, if any. Context
// cancellation is not considered an error.
func (s *Subscription) Err() error {
	return s.err
}

// Lines returns the sequence of complete lines appended to the log after the
// subscription's offset. Line breaks and carriage returns are removed. An
// incomplete last line is held back until it is terminated.
//
// The sequence ends when the subscription's context is done, the consumer
// stops iterating or reading the log fails. If the log does not exist yet,
// it is waited for.
func (s *Subscription) Lines() iter.Seq[string] {
	return func(yield func(string) bool) {
		file, err := s.open()
		if err != nil || file == nil {
			s.err = err
			return
		}
		defer file.Close()

		_, err = file.Seek(s.offset, io.SeekStart)
		if err != nil {
			s.err = &Error{Path: s.log.Path, Err: fmt.Errorf("seek: %w", err)}
			return
		}

		reader := bufio.NewReader(file)

		var pending strings.Builder

		for {
			chunk, err := reader.ReadString('\n')
			pending.WriteString(chunk)

			switch {
			case err == nil:
				line := pending.String()
				pending.Reset()

				s.offset += int64(len(line))

				line = strings.TrimSuffix(line, "\n")
				line = strings.ReplaceAll(line, "\r", "")

				if !yield(line) {
					return
				}
			case errors.Is(err, io.EOF):
				if !s.wait() {
					return
				}
			default:
				s.err = &Error{Path: s.log.Path, Err: fmt.Errorf("read: %w", err)}
				return
			}
		}
	}
}

// open opens the log file. It waits for the file to be created. It returns
// nil without error if the context is done before.
func (s *Subscription) open() (*os.File, error) {
	for {
		file, err := os.Open(s.log.Path)
		if err == nil {
			return file, nil
		}

		if !errors.Is(err, os.ErrNotExist) {
			return nil, &Error{Path: s.log.Path, Err: err}
		}

		if !s.wait() {
			return nil, nil
		}
	}
}

// wait blocks for one poll interval. It returns false if the context is done.
func (s *Subscription) wait() bool {
	timer := time.NewTimer(s.log.pollInterval())
	defer timer.Stop()

	select {
	case <-s.ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
