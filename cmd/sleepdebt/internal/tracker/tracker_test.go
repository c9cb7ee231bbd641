// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tracker

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/sleepdebt/cmd/sleepdebt/internal/prompt"
	"github.com/AleutianAI/sleepdebt/cmd/sleepdebt/internal/sleep"
	"github.com/AleutianAI/sleepdebt/cmd/sleepdebt/internal/storage"
	"github.com/AleutianAI/sleepdebt/pkg/logging"
	"github.com/AleutianAI/sleepdebt/pkg/ux"
)

// =============================================================================
// Test Helpers
// =============================================================================

const delta = 1e-9

// recordingReporter captures status lines as "<severity>: <text>".
type recordingReporter struct {
	lines []string
}

func (r *recordingReporter) Info(text string)    { r.add("info", text) }
func (r *recordingReporter) Success(text string) { r.add("success", text) }
func (r *recordingReporter) Warning(text string) { r.add("warning", text) }
func (r *recordingReporter) Error(text string)   { r.add("error", text) }
func (r *recordingReporter) Bullet(text string)  { r.add("bullet", text) }

func (r *recordingReporter) add(severity, text string) {
	r.lines = append(r.lines, severity+": "+text)
}

func (r *recordingReporter) joined() string {
	return strings.Join(r.lines, "\n")
}

var night = time.Date(2025, 3, 2, 7, 30, 0, 0, time.Local)

type harness struct {
	store    *storage.MemoryStore
	reporter *recordingReporter
	exporter *logging.BufferedExporter
}

func newHarness(initial *sleep.State) *harness {
	return &harness{
		store:    storage.NewMemoryStore(initial),
		reporter: &recordingReporter{},
		exporter: logging.NewBufferedExporter(),
	}
}

// run executes one session with the given scripted prompter.
func (h *harness) run(t *testing.T, p prompt.Prompter) (*Result, error) {
	t.Helper()
	h.reporter.lines = nil
	tr, err := New(Config{
		Store:    h.store,
		Prompter: p,
		Reporter: h.reporter,
		Logger: logging.New(logging.Config{
			Level:    logging.LevelDebug,
			Quiet:    true,
			Service:  "sleepdebt-test",
			Exporter: h.exporter,
		}),
		Now: func() time.Time { return night },
	})
	require.NoError(t, err)
	return tr.Run(context.Background())
}

func newProfileAnswers(sleepHours string) map[string][]string {
	return map[string][]string{
		prompt.KeyName:          {"Ada"},
		prompt.KeyAge:           {"30"},
		prompt.KeyAvgSleep:      {"7"},
		prompt.KeyWakeUpTime:    {"07:00"},
		prompt.KeySleepHours:    {sleepHours},
		prompt.KeyInterruptions: {""},
	}
}

func nightAnswers(sleepHours, interruptions string) map[string][]string {
	return map[string][]string{
		prompt.KeySleepHours:    {sleepHours},
		prompt.KeyInterruptions: {interruptions},
	}
}

// =============================================================================
// Session Scenarios
// =============================================================================

func TestRun_FirstSession(t *testing.T) {
	h := newHarness(nil)
	p := prompt.NewMockPrompter(newProfileAnswers("6"))

	res, err := h.run(t, p)

	require.NoError(t, err)
	assert.True(t, res.ProfileCreated)
	assert.Equal(t, 8.0, res.Profile.IdealSleep)
	assert.Equal(t, "Ada", res.Profile.Name)
	assert.Equal(t, "2025-03-02", res.Record.Date)
	assert.InDelta(t, 6.0, res.Record.TotalSleep, delta)
	assert.InDelta(t, 2.0, res.Record.SleepDebt, delta)
	assert.Equal(t, sleep.SuggestSleepEarlier, res.Advice.Suggestion)

	// No nap question: there was no previous debt.
	assert.Equal(t, []string{
		prompt.KeyName, prompt.KeyAge, prompt.KeyAvgSleep, prompt.KeyWakeUpTime,
		prompt.KeySleepHours, prompt.KeyInterruptions,
	}, p.Keys())
	assert.Len(t, p.Calls, 6)

	// Profile save, then record save.
	assert.Equal(t, 2, h.store.Saves())
	stored := h.store.Snapshot()
	require.NotNil(t, stored.Profile)
	assert.Equal(t, "07:00", stored.Profile.WakeUpTime)
	require.Equal(t, 1, stored.History.Len())
	assert.InDelta(t, 2.0, stored.History.PreviousDebt(), delta)

	assert.Contains(t, h.reporter.joined(), "success: Profile created successfully!")
	assert.Contains(t, h.reporter.joined(), "warning: You have a sleep debt of 2.00 hours. Suggestions:")
	assert.Contains(t, h.reporter.joined(), "bullet: Try sleeping earlier tonight by an hour.")
}

func TestRun_SecondNightWithoutNap(t *testing.T) {
	h := newHarness(nil)
	_, err := h.run(t, prompt.NewMockPrompter(newProfileAnswers("6")))
	require.NoError(t, err)

	p := prompt.NewMockPrompter(nightAnswers("9", "0"), false)
	res, err := h.run(t, p)

	require.NoError(t, err)
	assert.False(t, res.ProfileCreated)
	assert.False(t, res.NapTaken)
	assert.InDelta(t, 9.0, res.Record.TotalSleep, delta)
	assert.InDelta(t, 1.0, res.Record.SleepDebt, delta)
	assert.Equal(t, sleep.SuggestShortNap, res.Advice.Suggestion)

	require.Len(t, p.Calls, 3)
	assert.Equal(t, "Confirm", p.Calls[0].Method)
	assert.Contains(t, p.Calls[0].Prompt, "2.00 hours")
	assert.Equal(t, "success: Welcome back, Ada!", h.reporter.lines[0])

	stored := h.store.Snapshot()
	require.Equal(t, 2, stored.History.Len())
	assert.InDelta(t, 2.0, stored.History[0].SleepDebt, delta)
	assert.InDelta(t, 1.0, stored.History[1].SleepDebt, delta)
}

func TestRun_NapReducesPreviousDebt(t *testing.T) {
	h := newHarness(nil)
	_, err := h.run(t, prompt.NewMockPrompter(newProfileAnswers("6")))
	require.NoError(t, err)

	answers := nightAnswers("9", "0")
	answers[prompt.KeyNapMinutes] = []string{"30"}
	res, err := h.run(t, prompt.NewMockPrompter(answers, true))

	require.NoError(t, err)
	assert.True(t, res.NapTaken)
	assert.InDelta(t, 0.5, res.NapHours, delta)
	assert.InDelta(t, 0.5, res.Record.SleepDebt, delta)
	assert.Equal(t, sleep.SuggestShortNap, res.Advice.Suggestion)
	assert.Contains(t, h.reporter.joined(), "success: Nap added successfully!")
	assert.Contains(t, h.reporter.joined(), "bullet: Take a short nap of 20-30 minutes.")

	stored := h.store.Snapshot()
	require.Equal(t, 2, stored.History.Len())
	assert.InDelta(t, 1.5, stored.History[0].SleepDebt, delta)
	assert.InDelta(t, 0.5, stored.History[1].SleepDebt, delta)
	// profile + record on night one, nap + record on night two
	assert.Equal(t, 4, h.store.Saves())
}

func TestRun_ZeroMinuteNapStillSaved(t *testing.T) {
	h := newHarness(&sleep.State{
		Profile: mustProfile(t),
		History: sleep.Ledger{{Date: "2025-03-01", TotalSleep: 6, SleepDebt: 2}},
	})
	answers := nightAnswers("8", "0")
	answers[prompt.KeyNapMinutes] = []string{"0"}

	res, err := h.run(t, prompt.NewMockPrompter(answers, true))

	require.NoError(t, err)
	assert.True(t, res.NapTaken)
	assert.Equal(t, 0.0, res.NapHours)
	assert.InDelta(t, 2.0, res.Record.SleepDebt, delta)
	assert.Equal(t, 2, h.store.Saves())
}

func TestRun_SurplusCarriesForwardAsCredit(t *testing.T) {
	h := newHarness(nil)
	res, err := h.run(t, prompt.NewMockPrompter(newProfileAnswers("10")))
	require.NoError(t, err)
	assert.InDelta(t, -2.0, res.Record.SleepDebt, delta)
	assert.Equal(t, sleep.SuggestNone, res.Advice.Suggestion)
	assert.Contains(t, h.reporter.joined(), "success: Congratulations! You have no sleep debt.")

	// No debt, so no nap question; the surplus offsets tonight's deficit.
	p := prompt.NewMockPrompter(nightAnswers("7", "0"))
	res, err = h.run(t, p)

	require.NoError(t, err)
	assert.InDelta(t, -1.0, res.Record.SleepDebt, delta)
	for _, c := range p.Calls {
		assert.NotEqual(t, "Confirm", c.Method)
	}
}

func TestRun_SuggestionShownWithTipsOff(t *testing.T) {
	ux.SetPersonality(ux.Personality{Level: ux.PersonalityMinimal, ShowTips: false})
	t.Cleanup(func() { ux.SetPersonality(ux.DefaultPersonality()) })

	h := newHarness(nil)
	_, err := h.run(t, prompt.NewMockPrompter(newProfileAnswers("6")))

	require.NoError(t, err)
	assert.Contains(t, h.reporter.joined(), "warning: You have a sleep debt of 2.00 hours. Suggestions:")
	assert.Contains(t, h.reporter.joined(), "bullet: Try sleeping earlier tonight by an hour.")
}

func TestRun_Interruptions(t *testing.T) {
	tests := []struct {
		name          string
		hours         string
		interruptions string
		wantTotal     float64
		wantDebt      float64
		wantAdvice    sleep.Suggestion
	}{
		{"none", "8", "0", 8, 0, sleep.SuggestNone},
		{"blank means zero", "8", "", 8, 0, sleep.SuggestNone},
		{"two interruptions", "6", "30,30", 5, 3, sleep.SuggestSleepEarlier},
		{"fractional", "7.5", "15", 7.25, 0.75, sleep.SuggestShortNap},
		{"more than reported", "1", "120", -1, 9, sleep.SuggestCatchUp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(&sleep.State{Profile: mustProfile(t)})

			res, err := h.run(t, prompt.NewMockPrompter(nightAnswers(tt.hours, tt.interruptions)))

			require.NoError(t, err)
			assert.InDelta(t, tt.wantTotal, res.Record.TotalSleep, delta)
			assert.InDelta(t, tt.wantDebt, res.Record.SleepDebt, delta)
			assert.Equal(t, tt.wantAdvice, res.Advice.Suggestion)
		})
	}
}

func TestRun_IdealSleepIsNotRecomputed(t *testing.T) {
	// A stored profile keeps its ideal sleep even if its age now falls
	// into another band.
	p := mustProfile(t)
	p.Age = 70
	h := newHarness(&sleep.State{Profile: p})

	res, err := h.run(t, prompt.NewMockPrompter(nightAnswers("8", "0")))

	require.NoError(t, err)
	assert.Equal(t, 8.0, res.Profile.IdealSleep)
	assert.InDelta(t, 0.0, res.Record.SleepDebt, delta)
}

func TestRun_CumulativeBalance(t *testing.T) {
	h := newHarness(&sleep.State{Profile: mustProfile(t)})
	nights := []string{"6", "7", "9.5", "5", "8"}

	for _, hours := range nights {
		p := prompt.NewMockPrompter(nightAnswers(hours, "0"), false)
		_, err := h.run(t, p)
		require.NoError(t, err)
	}

	history := h.store.Snapshot().History
	require.Equal(t, len(nights), history.Len())
	prev := 0.0
	for i, r := range history {
		assert.InDelta(t, (8-r.TotalSleep)+prev, r.SleepDebt, delta, "record %d", i)
		prev = r.SleepDebt
	}
}

// =============================================================================
// Cancellation
// =============================================================================

func TestRun_CancelDuringProfileSavesNothing(t *testing.T) {
	h := newHarness(nil)
	p := prompt.NewMockPrompter(map[string][]string{
		prompt.KeyName: {"Ada"},
		prompt.KeyAge:  {"30"},
	})

	res, err := h.run(t, p)

	assert.Nil(t, res)
	assert.ErrorIs(t, err, prompt.ErrCancelled)
	assert.Equal(t, 0, h.store.Saves())
	assert.Nil(t, h.store.Snapshot())
}

func TestRun_CancelAfterProfileKeepsProfile(t *testing.T) {
	h := newHarness(nil)
	answers := newProfileAnswers("6")
	delete(answers, prompt.KeySleepHours)

	_, err := h.run(t, prompt.NewMockPrompter(answers))

	assert.ErrorIs(t, err, prompt.ErrCancelled)
	stored := h.store.Snapshot()
	require.NotNil(t, stored.Profile)
	assert.Equal(t, 0, stored.History.Len())
}

func TestRun_CancelAfterNapKeepsNap(t *testing.T) {
	h := newHarness(&sleep.State{
		Profile: mustProfile(t),
		History: sleep.Ledger{{Date: "2025-03-01", TotalSleep: 6, SleepDebt: 2}},
	})
	p := prompt.NewMockPrompter(map[string][]string{
		prompt.KeyNapMinutes: {"30"},
	}, true)

	_, err := h.run(t, p)

	assert.ErrorIs(t, err, prompt.ErrCancelled)
	stored := h.store.Snapshot()
	require.Equal(t, 1, stored.History.Len())
	assert.InDelta(t, 1.5, stored.History.PreviousDebt(), delta)
	assert.Equal(t, 1, h.store.Saves())
}

func TestRun_CancelAtNapQuestion(t *testing.T) {
	h := newHarness(&sleep.State{
		Profile: mustProfile(t),
		History: sleep.Ledger{{Date: "2025-03-01", TotalSleep: 6, SleepDebt: 2}},
	})

	_, err := h.run(t, prompt.NewMockPrompter(nil))

	assert.ErrorIs(t, err, prompt.ErrCancelled)
	assert.Equal(t, 0, h.store.Saves())
}

func TestRun_CancelledLogsAtInfo(t *testing.T) {
	h := newHarness(nil)

	_, err := h.run(t, prompt.NewMockPrompter(nil))
	require.ErrorIs(t, err, prompt.ErrCancelled)

	entries := h.exporter.Entries()
	require.NotEmpty(t, entries)
	last := entries[len(entries)-1]
	assert.Equal(t, "session cancelled", last.Message)
	assert.Equal(t, logging.LevelInfo, last.Level)
	assert.Equal(t, "create profile", last.Attrs["step"])
}

func TestRun_CancelledContextIsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tr, err := New(Config{
		Store:    storage.NewMemoryStore(nil),
		Prompter: prompt.NewMockPrompter(newProfileAnswers("6")),
		Reporter: &recordingReporter{},
	})
	require.NoError(t, err)

	_, err = tr.Run(ctx)

	assert.ErrorIs(t, err, prompt.ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled)
}

// =============================================================================
// Faults
// =============================================================================

func TestRun_StorageFaultPropagates(t *testing.T) {
	h := newHarness(nil)
	h.store.SaveErr = errors.New("disk full")

	_, err := h.run(t, prompt.NewMockPrompter(newProfileAnswers("6")))

	require.Error(t, err)
	assert.NotErrorIs(t, err, prompt.ErrCancelled)
	var storeErr *storage.Error
	require.ErrorAs(t, err, &storeErr)
	assert.Contains(t, err.Error(), "save profile")
}

func TestRun_CorruptStoreIsNotRepaired(t *testing.T) {
	path := filepath.Join(t.TempDir(), storage.DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	p := prompt.NewMockPrompter(newProfileAnswers("6"))

	tr, err := New(Config{
		Store:    storage.NewJSONFileStore(path),
		Prompter: p,
		Reporter: &recordingReporter{},
	})
	require.NoError(t, err)
	_, err = tr.Run(context.Background())

	assert.ErrorIs(t, err, storage.ErrCorrupt)
	assert.Empty(t, p.Calls)
	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "{not json", string(data))
}

func TestRun_JSONStoreEndToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), storage.DefaultFileName)
	store := storage.NewJSONFileStore(path)
	newTracker := func(p prompt.Prompter) *Tracker {
		tr, err := New(Config{Store: store, Prompter: p, Reporter: &recordingReporter{}, Now: func() time.Time { return night }})
		require.NoError(t, err)
		return tr
	}

	_, err := newTracker(prompt.NewMockPrompter(newProfileAnswers("6"))).Run(context.Background())
	require.NoError(t, err)

	answers := nightAnswers("9", "0")
	answers[prompt.KeyNapMinutes] = []string{"30"}
	res, err := newTracker(prompt.NewMockPrompter(answers, true)).Run(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 0.5, res.Record.SleepDebt, delta)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"sleepDebt": 1.5`)
	assert.Contains(t, string(data), `"sleepDebt": 0.5`)
	assert.Contains(t, string(data), `"date": "2025-03-02"`)
}

// =============================================================================
// Logging
// =============================================================================

func TestRun_LogsCarrySessionID(t *testing.T) {
	h := newHarness(nil)

	res, err := h.run(t, prompt.NewMockPrompter(newProfileAnswers("6")))
	require.NoError(t, err)
	require.NotEmpty(t, res.SessionID)

	entries := h.exporter.Entries()
	require.NotEmpty(t, entries)
	for _, e := range entries {
		assert.Equal(t, res.SessionID, e.Attrs["session_id"], "entry %q", e.Message)
	}
	assert.Contains(t, h.exporter.Messages(), "profile created")
	assert.Contains(t, h.exporter.Messages(), "night recorded")
}

func TestRun_SessionIDsDiffer(t *testing.T) {
	h := newHarness(&sleep.State{Profile: mustProfile(t)})

	a, err := h.run(t, prompt.NewMockPrompter(nightAnswers("8", "0")))
	require.NoError(t, err)
	b, err := h.run(t, prompt.NewMockPrompter(nightAnswers("8", "0")))
	require.NoError(t, err)

	assert.NotEqual(t, a.SessionID, b.SessionID)
}

// =============================================================================
// Construction
// =============================================================================

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrMissingDependency)

	_, err = New(Config{Store: storage.NewMemoryStore(nil), Prompter: prompt.NewMockPrompter(nil)})
	assert.ErrorIs(t, err, ErrMissingDependency)

	tr, err := New(Config{
		Store:    storage.NewMemoryStore(nil),
		Prompter: prompt.NewLinePrompter(strings.NewReader(""), &bytes.Buffer{}),
		Reporter: &recordingReporter{},
	})
	require.NoError(t, err)
	assert.NotNil(t, tr.logger)
	assert.NotNil(t, tr.now)
}

func mustProfile(t *testing.T) *sleep.Profile {
	t.Helper()
	p, err := sleep.NewProfile("Ada", 30, 7, "07:00")
	require.NoError(t, err)
	return p
}
