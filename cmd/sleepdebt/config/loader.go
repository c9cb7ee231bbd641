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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when the config file parses but holds
// unsupported values.
var ErrInvalidConfig = errors.New("invalid config")

var configValidate = validator.New()

// DefaultPath returns ~/.sleepdebt/sleepdebt.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find the user's home directory: %w", err)
	}
	return filepath.Join(home, ".sleepdebt", "sleepdebt.yaml"), nil
}

// Load reads the config at path, creating it with defaults first if it
// does not exist.
//
// Keys missing from the file keep their default values.
//
// # Outputs
//
//   - SleepDebtConfig: The merged configuration.
//   - bool: True if the file was created by this call.
//   - error: Read, parse or validation failure.
func Load(path string) (SleepDebtConfig, bool, error) {
	created := false
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := createDefault(path); err != nil {
			return SleepDebtConfig{}, false, err
		}
		created = true
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return SleepDebtConfig{}, false, fmt.Errorf("failed to read the config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return SleepDebtConfig{}, false, fmt.Errorf("failed to parse the config file %s: %w", path, err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return SleepDebtConfig{}, false, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, created, nil
}

// Validate checks enumerated fields.
func (c SleepDebtConfig) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s=%q (%s %s)", fe.Namespace(), fe.Value(), fe.Tag(), fe.Param()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// normalize lower-cases enumerated values so "JSON" and "Info" work.
func (c *SleepDebtConfig) normalize() {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.UI.Personality = strings.ToLower(strings.TrimSpace(c.UI.Personality))
	if c.Storage.Backend == "" {
		c.Storage.Backend = "json"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create the config directory: %w", err)
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
