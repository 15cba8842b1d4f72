// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/aibor/virtbridge/internal/bridge"
	"gopkg.in/yaml.v3"
)

var (
	ErrEmptyScript        = errors.New("script has no commands")
	ErrEmptyScriptCommand = errors.New("script command has nothing to run")
)

// Script is a sequence of guest commands read from a YAML file:
//
//	commands:
//	  - name: kernel
//	    run: uname -a
//	  - run: dmesg | tail -n 20
//	    timeout: 5s
type Script struct {
	Commands []ScriptCommand `yaml:"commands"`
}

// ScriptCommand is a single command of a [Script].
type ScriptCommand struct {
	Name string `yaml:"name"`
	Run  string `yaml:"run"`
	// Timeout overrides the default command timeout if set.
	Timeout time.Duration `yaml:"timeout"`
}

// ReadScript reads the [Script] from the file at the given path.
func ReadScript(path string) (*Script, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	defer file.Close()

	return ParseScript(file)
}

// ParseScript decodes a [Script]. Unknown fields are rejected.
func ParseScript(reader io.Reader) (*Script, error) {
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)

	var script Script

	err := decoder.Decode(&script)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode script: %w", err)
	}

	if len(script.Commands) == 0 {
		return nil, ErrEmptyScript
	}

	for idx := range script.Commands {
		command := &script.Commands[idx]
		command.Run = strings.TrimRight(command.Run, "\r\n")

		if command.Run == "" {
			return nil, fmt.Errorf("command %d: %w", idx, ErrEmptyScriptCommand)
		}

		if strings.ContainsAny(command.Run, "\r\n") {
			return nil, fmt.Errorf("command %d: %w", idx, bridge.ErrMultiLine)
		}

		if command.Timeout < 0 {
			return nil, fmt.Errorf("command %d: timeout: %w", idx, ErrValueOutOfRange)
		}
	}

	return &script, nil
}
