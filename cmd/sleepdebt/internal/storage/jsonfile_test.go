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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/sleepdebt/cmd/sleepdebt/internal/sleep"
)

func TestJSONFileStore_PrettyPrinted(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	store := NewJSONFileStore(path)

	state := sleep.NewState()
	p, err := sleep.NewProfile("Ada", 30, 7, "06:30")
	require.NoError(t, err)
	state.Profile = p

	require.NoError(t, store.Save(context.Background(), state))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.True(t, strings.HasPrefix(text, "{\n  \"profile\": {\n"))
	assert.Contains(t, text, `"history": []`)
	assert.Contains(t, text, `"idealSleep": 8`)
	assert.True(t, strings.HasSuffix(text, "}\n"))
}

func TestJSONFileStore_NilHistoryWrittenAsArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	store := NewJSONFileStore(path)

	require.NoError(t, store.Save(context.Background(), &sleep.State{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"history": []`)
	assert.Contains(t, string(data), `"profile": null`)
}

func TestJSONFileStore_Corrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "{this is not json"},
		{"wrong shape", `{"profile": 42, "history": []}`},
		{"bad date", `{"profile": null, "history": [{"date": "03/01/2025", "totalSleep": 6, "sleepDebt": 2}]}`},
		{"bad wake-up", `{"profile": {"name": "Ada", "age": 30, "avgSleep": 7, "wakeUpTime": "7am", "idealSleep": 8}, "history": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), DefaultFileName)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := NewJSONFileStore(path).Load(context.Background())

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrCorrupt)
			var storeErr *Error
			require.ErrorAs(t, err, &storeErr)
			assert.Equal(t, "decode", storeErr.Op)
			assert.Equal(t, path, storeErr.Path)

			// The file is left untouched.
			data, readErr := os.ReadFile(path)
			require.NoError(t, readErr)
			assert.Equal(t, tt.content, string(data))
		})
	}
}

func TestJSONFileStore_LegacyFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	content := `{
  "profile": {"name": "Ada", "age": 30, "avgSleep": "6.5", "wakeUpTime": "07:00", "idealSleep": 8},
  "history": null
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	state, err := NewJSONFileStore(path).Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, sleep.Hours(6.5), state.Profile.AvgSleep)
	assert.Equal(t, sleep.Ledger{}, state.History)
}

func TestJSONFileStore_LegacyProfileStillUsable(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	content := `{
  "profile": {"name": "", "age": 30, "avgSleep": "7", "wakeUpTime": "7:00", "idealSleep": 8},
  "history": [{"date": "2025-03-01", "totalSleep": 6, "sleepDebt": 2}]
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	store := NewJSONFileStore(path)

	state, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "", state.Profile.Name)
	assert.Equal(t, "07:00", state.Profile.WakeUpTime)
	assert.InDelta(t, 2.0, state.History.PreviousDebt(), 1e-9)

	// The loaded state can be written back unchanged in meaning.
	state.History.Append(sleep.Record{Date: "2025-03-02", TotalSleep: 8, SleepDebt: 2})
	require.NoError(t, store.Save(context.Background(), state))
	again, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, again.History.Len())
}

func TestJSONFileStore_UnusableIdealSleepIsCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	content := `{"profile": {"name": "Ada", "age": 30, "avgSleep": 7, "wakeUpTime": "07:00", "idealSleep": 0}, "history": []}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := NewJSONFileStore(path).Load(context.Background())

	assert.ErrorIs(t, err, ErrCorrupt)
	assert.Contains(t, err.Error(), "IdealSleep")
}

func TestJSONFileStore_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	store := NewJSONFileStore(filepath.Join(dir, DefaultFileName))

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Save(context.Background(), sleep.NewState()))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, DefaultFileName, entries[0].Name())
}

func TestJSONFileStore_UnwritableDirectory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	// The parent "directory" is a regular file, so mkdir fails.
	store := NewJSONFileStore(filepath.Join(blocker, DefaultFileName))
	err := store.Save(context.Background(), sleep.NewState())

	var storeErr *Error
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, BackendJSON, storeErr.Backend)
	assert.NotErrorIs(t, err, ErrCorrupt)
}

func TestJSONFileStore_Path(t *testing.T) {
	assert.Equal(t, "/tmp/x.json", NewJSONFileStore("/tmp/x.json").Path())
}
