// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"os"
	"path/filepath"

	"github.com/AleutianAI/sleepdebt/pkg/logging"
)

// CurrentConfigVersion is written to new config files.
const CurrentConfigVersion = "1"

// Default file names, resolved next to the executable when
// storage.path is empty.
const (
	DefaultJSONFile   = "sleepData.json"
	DefaultBadgerDir  = "sleepData.badger"
	DefaultSQLiteFile = "sleepData.db"
)

type SleepDebtConfig struct {
	// Meta: file format version
	Meta MetaConfig `yaml:"meta"`

	// Storage: where the sleep state lives
	Storage StorageConfig `yaml:"storage"`

	// Logging: diagnostic log output (never the sleep data itself)
	Logging LoggingConfig `yaml:"logging"`

	// UI: terminal output
	UI UIConfig `yaml:"ui"`
}

type MetaConfig struct {
	Version string `yaml:"version"`
}

type StorageConfig struct {
	// Backend is one of json, badger, sqlite. memory keeps nothing
	// between runs and is only useful for trying the CLI out.
	Backend string `yaml:"backend" validate:"oneof=json badger sqlite memory"`

	// Path to the JSON file, Badger directory or SQLite file. Empty means
	// a default name next to the executable.
	Path string `yaml:"path"`
}

type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	Dir   string `yaml:"dir"`   // e.g. ~/.sleepdebt/logs, empty disables file logs
	JSON  bool   `yaml:"json"`  // JSON instead of text on stderr
	Quiet bool   `yaml:"quiet"` // no stderr logging at all
}

type UIConfig struct {
	// Personality is full, standard, minimal or machine. Empty picks
	// automatically. SLEEPDEBT_PERSONALITY overrides it.
	Personality string `yaml:"personality" validate:"omitempty,oneof=full standard minimal machine"`

	// Tips prints the catch-up suggestion under the history summary.
	// A session always prints its suggestion.
	Tips bool `yaml:"tips"`
}

// DefaultConfig returns the configuration written on first run.
//
// Stderr logging is quiet by default so diagnostics do not interleave
// with the prompts; file logs still go to ~/.sleepdebt/logs.
func DefaultConfig() SleepDebtConfig {
	return SleepDebtConfig{
		Meta: MetaConfig{Version: CurrentConfigVersion},
		Storage: StorageConfig{
			Backend: "json",
			Path:    "",
		},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   "~/.sleepdebt/logs",
			JSON:  false,
			Quiet: true,
		},
		UI: UIConfig{Personality: "", Tips: true},
	}
}

// ResolvedPath returns Storage.Path, or the backend's default file next
// to the running executable.
func (s StorageConfig) ResolvedPath() string {
	exeDir := "."
	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		exeDir = filepath.Dir(exe)
	}
	return s.resolvePath(exeDir)
}

func (s StorageConfig) resolvePath(exeDir string) string {
	if s.Path != "" {
		return logging.ExpandPath(s.Path)
	}
	switch s.Backend {
	case "badger":
		return filepath.Join(exeDir, DefaultBadgerDir)
	case "sqlite":
		return filepath.Join(exeDir, DefaultSQLiteFile)
	default:
		return filepath.Join(exeDir, DefaultJSONFile)
	}
}
