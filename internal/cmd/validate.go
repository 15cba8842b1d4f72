// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var ErrNotDirectory = errors.New("not a directory")

// validateFilePaths checks the files given by flags exist before the guest
// is contacted. The console log may not exist yet, it is waited for.
func (f *flags) validateFilePaths() error {
	if f.Script != "" {
		err := ValidateFilePath(string(f.Script))
		if err != nil {
			return fmt.Errorf("script: %w", err)
		}
	}

	for _, fetch := range f.Fetches {
		dir := filepath.Dir(fetch.Host)

		stat, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", fetch, err)
		}

		if !stat.IsDir() {
			return fmt.Errorf("fetch %s: %s: %w", fetch, dir, ErrNotDirectory)
		}
	}

	return nil
}
