// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"fmt"
	"strings"
)

// Fetch is a file to copy from the guest to the host.
type Fetch struct {
	Guest string
	Host  string
}

func (f Fetch) String() string {
	return f.Guest + ":" + f.Host
}

// ParseFetch parses a fetch argument in the form GUEST:HOST. The host path is
// made absolute.
func ParseFetch(s string) (Fetch, error) {
	guest, host, found := strings.Cut(s, ":")
	if !found || guest == "" || host == "" {
		return Fetch{}, fmt.Errorf("%w: %q", ErrInvalidFetch, s)
	}

	host, err := AbsoluteFilePath(host)
	if err != nil {
		return Fetch{}, err
	}

	return Fetch{Guest: guest, Host: host}, nil
}

// FetchList is a flag value collecting [Fetch] arguments. An empty value clears
// the list.
type FetchList []Fetch

func (f *FetchList) String() string {
	specs := make([]string, 0, len(*f))
	for _, fetch := range *f {
		specs = append(specs, fetch.String())
	}

	return strings.Join(specs, ",")
}

func (f *FetchList) Set(s string) error {
	if s == "" {
		*f = nil
		return nil
	}

	fetch, err := ParseFetch(s)
	if err != nil {
		return err
	}

	*f = append(*f, fetch)

	return nil
}

func (*FetchList) Type() string {
	return "guest:host"
}
