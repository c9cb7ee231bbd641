// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package sleep

import (
	"encoding/json"
	"fmt"
)

// State is the whole persisted document: the profile (nil before the
// first run) and the ledger.
//
// It is always loaded and saved as a unit.
type State struct {
	Profile *Profile `json:"profile"`
	History Ledger   `json:"history"`
}

// NewState returns the initial state: no profile, empty history.
func NewState() *State {
	return &State{History: Ledger{}}
}

// MarshalJSON encodes an empty history as [] rather than null.
func (s State) MarshalJSON() ([]byte, error) {
	type plain State
	if s.History == nil {
		s.History = Ledger{}
	}
	return json.Marshal(plain(s))
}

// Normalize replaces a nil history with an empty one and pads a
// single-digit wake-up hour.
func (s *State) Normalize() *State {
	if s.History == nil {
		s.History = Ledger{}
	}
	if s.Profile != nil {
		s.Profile.WakeUpTime = CanonicalWakeUpTime(s.Profile.WakeUpTime)
	}
	return s
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := &State{History: make(Ledger, len(s.History))}
	copy(out.History, s.History)
	if s.Profile != nil {
		p := *s.Profile
		out.Profile = &p
	}
	return out
}

// Validate checks what a persisted state must hold: a usable ideal-sleep
// target when a profile is present, and well-formed records. The input
// rules of a new profile are Profile.Validate's job.
func (s *State) Validate() error {
	if s.Profile != nil {
		if err := s.Profile.ValidateStored(); err != nil {
			return err
		}
	}
	for i, r := range s.History {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("history[%d]: %w", i, err)
		}
	}
	return nil
}
