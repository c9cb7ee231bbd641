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
	"log/slog"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/AleutianAI/sleepdebt/cmd/sleepdebt/internal/sleep"
)

// stateKey is the single key holding the state document.
var stateKey = []byte("sleepdebt/state")

// BadgerConfig holds configuration for a BadgerDB-backed store.
type BadgerConfig struct {
	// Path is the directory for BadgerDB files.
	// Ignored when InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence).
	// Useful for testing.
	InMemory bool

	// SyncWrites fsyncs every write. Default: true.
	SyncWrites bool

	// Logger receives BadgerDB's own log lines. Nil silences them.
	Logger *slog.Logger
}

// DefaultBadgerConfig returns a durable on-disk configuration at path.
func DefaultBadgerConfig(path string) BadgerConfig {
	return BadgerConfig{
		Path:       path,
		SyncWrites: true,
	}
}

// InMemoryBadgerConfig returns configuration optimized for testing.
func InMemoryBadgerConfig() BadgerConfig {
	return BadgerConfig{
		InMemory:   true,
		SyncWrites: false,
	}
}

// badgerLog forwards BadgerDB's internal messages to slog, tagged
// component=badger. Badger reports table and compaction housekeeping at
// info level; those lines are demoted to debug so a session log only
// shows them when asked for.
type badgerLog struct {
	logger *slog.Logger
}

func newBadgerLog(logger *slog.Logger) *badgerLog {
	return &badgerLog{logger: logger.With("component", "badger")}
}

func (b *badgerLog) Errorf(format string, args ...any) {
	b.emit(slog.LevelError, format, args)
}

func (b *badgerLog) Warningf(format string, args ...any) {
	b.emit(slog.LevelWarn, format, args)
}

func (b *badgerLog) Infof(format string, args ...any) {
	b.emit(slog.LevelDebug, format, args)
}

func (b *badgerLog) Debugf(format string, args ...any) {
	b.emit(slog.LevelDebug, format, args)
}

func (b *badgerLog) emit(level slog.Level, format string, args []any) {
	ctx := context.Background()
	if !b.logger.Enabled(ctx, level) {
		return
	}
	b.logger.Log(ctx, level, strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// BadgerStore keeps the state as one JSON value in BadgerDB.
//
// # Description
//
// The state is a single record, so the store is a one-key key-value
// store. Each Save replaces the value inside one update transaction.
//
// # Thread Safety
//
// The underlying *badger.DB is safe for concurrent use, and BadgerDB's
// directory lock also stops a second process from opening the same store.
type BadgerStore struct {
	db   *badger.DB
	path string
}

// OpenBadgerStore opens (or creates) a BadgerDB store.
//
// # Outputs
//
//   - *BadgerStore: Caller must call Close() when done.
//   - error: *Error if the directory cannot be created or opened.
func OpenBadgerStore(cfg BadgerConfig) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, fmt.Errorf("badger backend: %w", ErrEmptyPath)
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, &Error{Op: "mkdir", Backend: BackendBadger, Path: cfg.Path, Err: err}
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites)
	opts = opts.WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(newBadgerLog(cfg.Logger))
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, &Error{Op: "open", Backend: BackendBadger, Path: cfg.Path, Err: err}
	}
	return &BadgerStore{db: db, path: cfg.Path}, nil
}

// Load reads the state value. A missing key yields sleep.NewState().
func (s *BadgerStore) Load(ctx context.Context) (*sleep.State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(stateKey)
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return sleep.NewState(), nil
	}
	if err != nil {
		return nil, &Error{Op: "read", Backend: BackendBadger, Path: s.path, Err: err}
	}

	var state sleep.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, decodeFailure(BackendBadger, s.path, err)
	}
	if err := state.Validate(); err != nil {
		return nil, decodeFailure(BackendBadger, s.path, err)
	}
	return state.Normalize(), nil
}

// Save replaces the state value.
func (s *BadgerStore) Save(ctx context.Context, state *sleep.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkState(state); err != nil {
		return fmt.Errorf("save: %w", err)
	}

	data, err := json.Marshal(state)
	if err != nil {
		return &Error{Op: "encode", Backend: BackendBadger, Path: s.path, Err: err}
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(stateKey, data)
	})
	if err != nil {
		return &Error{Op: "write", Backend: BackendBadger, Path: s.path, Err: err}
	}
	return nil
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

var _ Store = (*BadgerStore)(nil)
