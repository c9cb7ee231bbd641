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
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/AleutianAI/sleepdebt/cmd/sleepdebt/internal/sleep"
)

// SQLiteStore keeps the profile and history in two tables.
//
// The profile table holds at most one row (id = 1). History rows are
// ordered by seq, which is the ledger position. Save rewrites both tables
// in one transaction, so readers never see a half-written state.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLiteStore opens (or creates) the database file and its schema.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite backend: %w", ErrEmptyPath)
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, &Error{Op: "mkdir", Backend: BackendSQLite, Path: path, Err: err}
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, &Error{Op: "open", Backend: BackendSQLite, Path: path, Err: err}
	}
	// A single connection keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, path: path}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, &Error{Op: "schema", Backend: BackendSQLite, Path: path, Err: err}
	}
	return s, nil
}

func (s *SQLiteStore) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS profile (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		name TEXT NOT NULL,
		age INTEGER NOT NULL,
		avg_sleep REAL NOT NULL,
		wake_up_time TEXT NOT NULL,
		ideal_sleep REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS history (
		seq INTEGER PRIMARY KEY,
		date TEXT NOT NULL,
		total_sleep REAL NOT NULL,
		sleep_debt REAL NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Load reads both tables. Empty tables yield sleep.NewState().
func (s *SQLiteStore) Load(ctx context.Context) (*sleep.State, error) {
	state := sleep.NewState()

	var p sleep.Profile
	var avgSleep float64
	err := s.db.QueryRowContext(ctx, `
		SELECT name, age, avg_sleep, wake_up_time, ideal_sleep
		FROM profile
		WHERE id = 1
	`).Scan(&p.Name, &p.Age, &avgSleep, &p.WakeUpTime, &p.IdealSleep)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// first run, no profile yet
	case err != nil:
		return nil, &Error{Op: "read_profile", Backend: BackendSQLite, Path: s.path, Err: err}
	default:
		p.AvgSleep = sleep.Hours(avgSleep)
		state.Profile = &p
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT date, total_sleep, sleep_debt
		FROM history
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, &Error{Op: "read_history", Backend: BackendSQLite, Path: s.path, Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var r sleep.Record
		if err := rows.Scan(&r.Date, &r.TotalSleep, &r.SleepDebt); err != nil {
			return nil, &Error{Op: "scan_history", Backend: BackendSQLite, Path: s.path, Err: err}
		}
		state.History.Append(r)
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{Op: "read_history", Backend: BackendSQLite, Path: s.path, Err: err}
	}

	if err := state.Validate(); err != nil {
		return nil, decodeFailure(BackendSQLite, s.path, err)
	}
	return state.Normalize(), nil
}

// Save replaces the contents of both tables in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, state *sleep.State) error {
	if err := checkState(state); err != nil {
		return fmt.Errorf("save: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &Error{Op: "begin", Backend: BackendSQLite, Path: s.path, Err: err}
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM profile`); err != nil {
		return &Error{Op: "write_profile", Backend: BackendSQLite, Path: s.path, Err: err}
	}
	if p := state.Profile; p != nil {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO profile (id, name, age, avg_sleep, wake_up_time, ideal_sleep)
			VALUES (1, ?, ?, ?, ?, ?)
		`, p.Name, p.Age, float64(p.AvgSleep), p.WakeUpTime, p.IdealSleep)
		if err != nil {
			return &Error{Op: "write_profile", Backend: BackendSQLite, Path: s.path, Err: err}
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return &Error{Op: "write_history", Backend: BackendSQLite, Path: s.path, Err: err}
	}
	for i, r := range state.History {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO history (seq, date, total_sleep, sleep_debt)
			VALUES (?, ?, ?, ?)
		`, i, r.Date, r.TotalSleep, r.SleepDebt)
		if err != nil {
			return &Error{Op: "write_history", Backend: BackendSQLite, Path: s.path, Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &Error{Op: "commit", Backend: BackendSQLite, Path: s.path, Err: err}
	}
	return nil
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
