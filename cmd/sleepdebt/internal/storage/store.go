// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package storage persists the sleep-debt state document.
//
// The whole state (profile + history) is one record: it is loaded fully
// at the start of a run and written back fully after every mutation.
// There are no partial writes and no transactions across runs; the last
// writer wins. A missing store is a valid initial state, not an error.
//
// # Backends
//
//   - json: pretty-printed JSON file (default)
//   - badger: BadgerDB directory holding the document under one key
//   - sqlite: SQLite database with profile and history tables
//   - memory: in-process fake for tests
//
// # Thread Safety
//
// Stores are not designed for concurrent processes. One process per
// store is assumed.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AleutianAI/sleepdebt/cmd/sleepdebt/internal/sleep"
)

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Sentinel errors for storage.
var (
	ErrCorrupt        = errors.New("stored data is corrupted")
	ErrUnknownBackend = errors.New("unknown storage backend")
	ErrNilState       = errors.New("state must not be nil")
	ErrEmptyPath      = errors.New("storage path must not be empty")
)

// Store loads and saves the full sleep state.
type Store interface {
	// Load returns the persisted state, or sleep.NewState() if nothing
	// has been stored yet. The returned state is owned by the caller.
	Load(ctx context.Context) (*sleep.State, error)

	// Save replaces the persisted state with state.
	Save(ctx context.Context, state *sleep.State) error

	// Close releases the underlying resources.
	Close() error
}

// Error is a storage fault with the operation and location that failed.
//
// # Example
//
//	var storeErr *storage.Error
//	if errors.As(err, &storeErr) {
//	    fmt.Println(storeErr.Path)
//	}
type Error struct {
	// Op is the failing operation, e.g. "read", "decode", "rename".
	Op string

	// Backend is the backend name.
	Backend string

	// Path is the file or directory of the store.
	Path string

	// Err is the underlying error.
	Err error
}

// Error returns "storage <backend> <op> <path>: <err>".
func (e *Error) Error() string {
	return fmt.Sprintf("storage %s %s %s: %v", e.Backend, e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Config selects and locates a backend.
type Config struct {
	// Backend is one of json, badger, sqlite, memory. Empty means json.
	Backend string

	// Path is the JSON file, Badger directory or SQLite file.
	// Ignored by the memory backend.
	Path string

	// Logger receives the backend's own diagnostics. Only BadgerDB
	// produces any. Optional.
	Logger *slog.Logger
}

// Open creates the Store described by cfg.
//
// # Outputs
//
//   - Store: Ready to use. Caller must Close it.
//   - error: ErrUnknownBackend, ErrEmptyPath, or a *Error from the backend.
func Open(cfg Config) (Store, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backend == "" {
		backend = BackendJSON
	}
	if backend != BackendMemory && cfg.Path == "" {
		return nil, fmt.Errorf("%s backend: %w", backend, ErrEmptyPath)
	}

	switch backend {
	case BackendJSON:
		return NewJSONFileStore(cfg.Path), nil
	case BackendBadger:
		bcfg := DefaultBadgerConfig(cfg.Path)
		bcfg.Logger = cfg.Logger
		return OpenBadgerStore(bcfg)
	case BackendSQLite:
		return OpenSQLiteStore(cfg.Path)
	case BackendMemory:
		return NewMemoryStore(nil), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// checkState rejects nil and invalid states before they reach a backend,
// so nothing unreadable is ever written.
func checkState(state *sleep.State) error {
	if state == nil {
		return ErrNilState
	}
	return state.Validate()
}

// decodeFailure wraps a decode or validation failure as ErrCorrupt.
func decodeFailure(backend, path string, err error) error {
	return &Error{Op: "decode", Backend: backend, Path: path, Err: fmt.Errorf("%w: %v", ErrCorrupt, err)}
}
