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
	"fmt"
	"sync"

	"github.com/AleutianAI/sleepdebt/cmd/sleepdebt/internal/sleep"
)

// MemoryStore keeps the state in memory. Load and Save deep-copy, so
// callers cannot alias the stored document.
//
// SaveErr, when set, is returned by Save instead of storing; tests use it
// to simulate an unwritable store.
type MemoryStore struct {
	mu      sync.Mutex
	state   *sleep.State
	saves   int
	SaveErr error
}

// NewMemoryStore returns a store seeded with initial (nil = empty).
func NewMemoryStore(initial *sleep.State) *MemoryStore {
	return &MemoryStore{state: initial.Clone()}
}

// Load returns a copy of the stored state.
func (s *MemoryStore) Load(ctx context.Context) (*sleep.State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return sleep.NewState(), nil
	}
	return s.state.Clone().Normalize(), nil
}

// Save stores a copy of state.
func (s *MemoryStore) Save(ctx context.Context, state *sleep.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkState(state); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return &Error{Op: "write", Backend: BackendMemory, Path: "memory", Err: s.SaveErr}
	}
	s.state = state.Clone()
	s.saves++
	return nil
}

// Snapshot returns a copy of the stored state, or nil if never saved.
func (s *MemoryStore) Snapshot() *sleep.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Saves returns how many successful saves have happened.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
