// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AleutianAI/sleepdebt/cmd/sleepdebt/internal/sleep"
)

// DefaultFileName is the JSON store file name, placed next to the
// executable unless configured otherwise.
const DefaultFileName = "sleepData.json"

// JSONFileStore keeps the state in one pretty-printed JSON file.
//
// # Description
//
// Writes go to a temp file in the same directory which is then renamed
// over the target, so a crash mid-write leaves the previous document
// intact. The document is indented with two spaces and stays readable
// and hand-editable.
type JSONFileStore struct {
	path string
}

// NewJSONFileStore returns a store for the file at path. The file and its
// directory are created on the first Save.
func NewJSONFileStore(path string) *JSONFileStore {
	return &JSONFileStore{path: path}
}

// Path returns the file location.
func (s *JSONFileStore) Path() string {
	return s.path
}

// Load reads and validates the file.
//
// A missing file yields sleep.NewState(). Malformed JSON or data that
// fails validation returns a *Error wrapping ErrCorrupt; the file is left
// untouched.
func (s *JSONFileStore) Load(ctx context.Context) (*sleep.State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return sleep.NewState(), nil
		}
		return nil, &Error{Op: "read", Backend: BackendJSON, Path: s.path, Err: err}
	}

	var state sleep.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, decodeFailure(BackendJSON, s.path, err)
	}
	if err := state.Validate(); err != nil {
		return nil, decodeFailure(BackendJSON, s.path, err)
	}
	return state.Normalize(), nil
}

// Save writes the full state atomically.
func (s *JSONFileStore) Save(ctx context.Context, state *sleep.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkState(state); err != nil {
		return fmt.Errorf("save: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return &Error{Op: "encode", Backend: BackendJSON, Path: s.path, Err: err}
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &Error{Op: "mkdir", Backend: BackendJSON, Path: dir, Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".tmp.*")
	if err != nil {
		return &Error{Op: "create_temp", Backend: BackendJSON, Path: dir, Err: err}
	}
	tmpPath := tmp.Name()
	cleanupTemp := true
	defer func() {
		if cleanupTemp {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return &Error{Op: "write", Backend: BackendJSON, Path: tmpPath, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return &Error{Op: "sync", Backend: BackendJSON, Path: tmpPath, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &Error{Op: "close", Backend: BackendJSON, Path: tmpPath, Err: err}
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return &Error{Op: "chmod", Backend: BackendJSON, Path: tmpPath, Err: err}
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return &Error{Op: "rename", Backend: BackendJSON, Path: s.path, Err: err}
	}

	cleanupTemp = false
	return nil
}

// Close is a no-op; the file is not held open between calls.
func (s *JSONFileStore) Close() error {
	return nil
}

var _ Store = (*JSONFileStore)(nil)
