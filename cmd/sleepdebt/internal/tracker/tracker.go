// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package tracker runs one sleep-debt session.
//
// A session loads the state, creates the profile on first use, offers a
// nap adjustment when there is outstanding debt, records tonight's sleep
// and reports the new balance. Profile creation and the nap adjustment
// are persisted as soon as they happen; a later cancellation does not
// roll them back.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AleutianAI/sleepdebt/cmd/sleepdebt/internal/prompt"
	"github.com/AleutianAI/sleepdebt/cmd/sleepdebt/internal/sleep"
	"github.com/AleutianAI/sleepdebt/cmd/sleepdebt/internal/storage"
	"github.com/AleutianAI/sleepdebt/pkg/logging"
	"github.com/AleutianAI/sleepdebt/pkg/ux"
)

// ErrMissingDependency is returned by New when a required collaborator
// is nil.
var ErrMissingDependency = errors.New("tracker: store, prompter and reporter are required")

// Reporter shows status lines to the user. *ux.Console implements it.
type Reporter interface {
	Info(text string)
	Success(text string)
	Warning(text string)
	Error(text string)
	Bullet(text string)
}

// Result summarizes a completed session.
type Result struct {
	// SessionID tags every log line of the run.
	SessionID string

	// Profile is the profile used for tonight's calculation.
	Profile sleep.Profile

	// ProfileCreated is true on the first run.
	ProfileCreated bool

	// NapTaken is true when the user reported a nap this run.
	NapTaken bool

	// NapHours is the nap offset applied this run.
	NapHours float64

	// Record is the record appended tonight.
	Record sleep.Record

	// Advice is the classification of Record.SleepDebt.
	Advice sleep.Advice
}

// Config holds the collaborators of a Tracker.
type Config struct {
	Store    storage.Store
	Prompter prompt.Prompter
	Reporter Reporter

	// Logger defaults to logging.Discard().
	Logger *logging.Logger

	// Now defaults to time.Now. The record date is Now().Format(DateLayout)
	// in Now's location.
	Now func() time.Time
}

// Tracker sequences a session against a store.
//
// # Thread Safety
//
// Not safe for concurrent use; one Run at a time per store.
type Tracker struct {
	store    storage.Store
	prompter prompt.Prompter
	reporter Reporter
	logger   *logging.Logger
	now      func() time.Time
}

// New creates a Tracker. Store, Prompter and Reporter are required.
func New(cfg Config) (*Tracker, error) {
	if cfg.Store == nil || cfg.Prompter == nil || cfg.Reporter == nil {
		return nil, ErrMissingDependency
	}
	t := &Tracker{
		store:    cfg.Store,
		prompter: cfg.Prompter,
		reporter: cfg.Reporter,
		logger:   cfg.Logger,
		now:      cfg.Now,
	}
	if t.logger == nil {
		t.logger = logging.Discard()
	}
	if t.now == nil {
		t.now = time.Now
	}
	return t, nil
}

// Run executes one session.
//
// # Description
//
// Steps, in order:
//
//  1. Load the state.
//  2. Create the profile if there is none, and save.
//  3. If the previous debt is positive, offer a nap adjustment; if taken,
//     reduce the last record's debt and save.
//  4. Ask tonight's sleep hours and interruptions.
//  5. Compute total sleep and the new balance from the previous debt as
//     it stands after step 3.
//  6. Append tonight's record and save.
//  7. Report the balance and a suggestion.
//
// # Outputs
//
//   - *Result: The completed session.
//   - error: Wraps prompt.ErrCancelled when the user aborted; anything
//     else is a fault (storage errors are *storage.Error).
func (t *Tracker) Run(ctx context.Context) (*Result, error) {
	res := &Result{SessionID: uuid.NewString()}
	log := t.logger.With("session_id", res.SessionID)
	log.Debug("session started")

	state, err := t.store.Load(ctx)
	if err != nil {
		return nil, t.abort(log, "load state", asCancellation(ctx, err))
	}

	if state.Profile == nil {
		t.reporter.Info("Welcome to Sleep Debt CLI! Let's create your sleep profile.")
		profile, err := t.createProfile(ctx)
		if err != nil {
			return nil, t.abort(log, "create profile", err)
		}
		state.Profile = profile
		if err := t.save(ctx, log, "profile", state); err != nil {
			return nil, err
		}
		res.ProfileCreated = true
		log.Info("profile created", "age", profile.Age, "ideal_sleep", profile.IdealSleep)
		t.reporter.Success("Profile created successfully!")
	} else {
		t.reporter.Success(fmt.Sprintf("Welcome back, %s!", state.Profile.Name))
	}
	res.Profile = *state.Profile

	if prev := state.History.PreviousDebt(); prev > 0 {
		taken, napHours, err := t.askNap(ctx, prev)
		if err != nil {
			return nil, t.abort(log, "nap adjustment", err)
		}
		if taken {
			if err := state.History.ApplyNapOffset(napHours); err != nil {
				return nil, fmt.Errorf("apply nap: %w", err)
			}
			if err := t.save(ctx, log, "nap", state); err != nil {
				return nil, err
			}
			res.NapTaken = true
			res.NapHours = napHours
			log.Info("nap applied", "nap_hours", napHours, "previous_debt", state.History.PreviousDebt())
			t.reporter.Success("Nap added successfully!")
		}
	}

	reported, minutes, err := t.collectTonight(ctx)
	if err != nil {
		return nil, t.abort(log, "collect sleep", err)
	}

	// PreviousDebt is read again here so tonight builds on the post-nap balance.
	total := sleep.ComputeTotalSleep(reported, minutes)
	debt := sleep.ComputeSleepDebt(state.Profile.IdealSleep, total, state.History.PreviousDebt())
	record := sleep.NewRecord(t.now(), total, debt)

	state.History.Append(record)
	if err := t.save(ctx, log, "record", state); err != nil {
		return nil, err
	}
	res.Record = record
	log.Info("night recorded",
		"date", record.Date,
		"total_sleep", record.TotalSleep,
		"sleep_debt", record.SleepDebt,
		"records", state.History.Len(),
	)

	res.Advice = sleep.Classify(debt)
	t.report(res.Advice)
	return res, nil
}

// createProfile asks the four profile questions.
func (t *Tracker) createProfile(ctx context.Context) (*sleep.Profile, error) {
	name, err := t.prompter.Ask(ctx, prompt.Question{
		Key:      prompt.KeyName,
		Title:    "What is your name?",
		Validate: prompt.NotBlank,
	})
	if err != nil {
		return nil, err
	}

	ageRaw, err := t.prompter.Ask(ctx, prompt.Question{
		Key:      prompt.KeyAge,
		Title:    "How old are you?",
		Validate: prompt.NonNegativeInt,
	})
	if err != nil {
		return nil, err
	}
	age, err := strconv.Atoi(strings.TrimSpace(ageRaw))
	if err != nil {
		return nil, fmt.Errorf("parse age %q: %w", ageRaw, err)
	}

	avgRaw, err := t.prompter.Ask(ctx, prompt.Question{
		Key:         prompt.KeyAvgSleep,
		Title:       "How many hours do you usually sleep per night?",
		Placeholder: "8, 6.5",
		Validate:    prompt.HoursInDay,
	})
	if err != nil {
		return nil, err
	}
	avgSleep, err := parseNumber(avgRaw)
	if err != nil {
		return nil, err
	}

	wakeUp, err := t.prompter.Ask(ctx, prompt.Question{
		Key:         prompt.KeyWakeUpTime,
		Title:       "What time do you want to wake up?",
		Placeholder: "07:00",
		Validate:    prompt.WakeUpTime,
	})
	if err != nil {
		return nil, err
	}

	return sleep.NewProfile(name, age, avgSleep, wakeUp)
}

// askNap asks whether a nap was taken and, if so, for how long.
func (t *Tracker) askNap(ctx context.Context, prevDebt float64) (bool, float64, error) {
	question := fmt.Sprintf("You have a sleep debt of %s hours. Did you take any naps to reduce it?",
		ux.FormatHours(prevDebt))
	taken, err := t.prompter.Confirm(ctx, question)
	if err != nil || !taken {
		return false, 0, err
	}

	raw, err := t.prompter.Ask(ctx, prompt.Question{
		Key:         prompt.KeyNapMinutes,
		Title:       "How many minutes did you nap?",
		Placeholder: "30",
		Validate:    prompt.NonNegativeFloat,
	})
	if err != nil {
		return false, 0, err
	}
	minutes, err := parseNumber(raw)
	if err != nil {
		return false, 0, err
	}
	return true, sleep.MinutesToHours(minutes), nil
}

// collectTonight asks for last night's sleep and interruptions.
func (t *Tracker) collectTonight(ctx context.Context) (float64, []float64, error) {
	hoursRaw, err := t.prompter.Ask(ctx, prompt.Question{
		Key:         prompt.KeySleepHours,
		Title:       "How many hours did you sleep last night?",
		Placeholder: "8, 6.5",
		Validate:    prompt.HoursInDay,
	})
	if err != nil {
		return 0, nil, err
	}
	hours, err := parseNumber(hoursRaw)
	if err != nil {
		return 0, nil, err
	}

	interruptionsRaw, err := t.prompter.Ask(ctx, prompt.Question{
		Key:         prompt.KeyInterruptions,
		Title:       "Any interruptions? How long, in minutes (comma-separated)?",
		Placeholder: "10,5",
		Default:     sleep.DefaultInterruptions,
		Validate:    prompt.MinutesList,
	})
	if err != nil {
		return 0, nil, err
	}
	minutes, err := sleep.ParseInterruptions(interruptionsRaw)
	if err != nil {
		return 0, nil, err
	}
	return hours, minutes, nil
}

// report prints the balance and the suggestion.
func (t *Tracker) report(advice sleep.Advice) {
	if !advice.InDebt() {
		t.reporter.Success(advice.Tip)
		return
	}
	t.reporter.Warning(fmt.Sprintf("You have a sleep debt of %s hours. Suggestions:", ux.FormatHours(advice.Debt)))
	t.reporter.Bullet(advice.Tip)
}

// save persists state after the named step.
func (t *Tracker) save(ctx context.Context, log *logging.Logger, step string, state *sleep.State) error {
	if err := t.store.Save(ctx, state); err != nil {
		return t.abort(log, "save "+step, asCancellation(ctx, err))
	}
	log.Debug("state saved", "step", step, "records", state.History.Len())
	return nil
}

// abort logs why a step stopped and wraps err with the step name.
func (t *Tracker) abort(log *logging.Logger, step string, err error) error {
	if errors.Is(err, prompt.ErrCancelled) {
		log.Info("session cancelled", "step", step)
	} else {
		log.Error("session failed", "step", step, "error", err)
	}
	return fmt.Errorf("%s: %w", step, err)
}

// asCancellation marks err as a user cancellation when it is the
// context's own error, so a signal that lands between prompts ends the
// session the same way as one that lands during a prompt.
func asCancellation(ctx context.Context, err error) error {
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return fmt.Errorf("%w: %w", prompt.ErrCancelled, err)
	}
	return err
}

// parseNumber parses an answer the prompter has already validated.
func parseNumber(raw string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", raw, err)
	}
	return f, nil
}

var _ Reporter = (*ux.Console)(nil)
