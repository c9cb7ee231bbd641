// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package prompt collects user input for a tracking session.
//
// The tracker only depends on the Prompter interface. Three
// implementations exist:
//
//   - FormPrompter: huh forms on a terminal
//   - LinePrompter: plain line-based questions for pipes and redirects
//   - MockPrompter: scripted answers for tests
//
// Validation happens inside the prompter. A Prompter never returns an
// answer that fails its Question's Validate function; it re-asks until
// the answer is valid or the user cancels.
package prompt

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// Question keys used by the tracker.
const (
	KeyName          = "name"
	KeyAge           = "age"
	KeyAvgSleep      = "avgSleep"
	KeyWakeUpTime    = "wakeUpTime"
	KeyNapMinutes    = "napMinutes"
	KeySleepHours    = "sleepHours"
	KeyInterruptions = "interruptions"
)

// Sentinel errors for prompting.
var (
	// ErrCancelled is returned when the user aborts a prompt (Ctrl+C,
	// end of input, or a cancelled context).
	ErrCancelled = errors.New("prompt cancelled by user")

	// ErrNonInteractive is returned by FormPrompter when no terminal is
	// attached.
	ErrNonInteractive = errors.New("prompt requires an interactive terminal")
)

// Question describes one free-text question.
type Question struct {
	// Key identifies the question, e.g. KeyAge. Used by MockPrompter and
	// in logs.
	Key string

	// Title is the text shown to the user.
	Title string

	// Placeholder is an example answer shown in an empty form field.
	Placeholder string

	// Default is returned when the user submits an empty answer.
	// Empty means no default.
	Default string

	// Validate checks the raw answer. Nil accepts anything.
	Validate func(string) error
}

// resolve applies the default and runs the validator.
func (q Question) resolve(raw string) (string, error) {
	if raw == "" && q.Default != "" {
		raw = q.Default
	}
	if q.Validate != nil {
		if err := q.Validate(raw); err != nil {
			return "", err
		}
	}
	return raw, nil
}

// Prompter asks the user questions.
//
// # Description
//
// Implementations block until the user answers or cancels. Cancellation
// is reported as an error wrapping ErrCancelled; callers check it with
// errors.Is.
//
// # Thread Safety
//
// Prompters are not safe for concurrent use. Questions are asked one at a
// time.
type Prompter interface {
	// Ask asks q and returns a validated answer.
	Ask(ctx context.Context, q Question) (string, error)

	// Confirm asks a yes/no question.
	Confirm(ctx context.Context, text string) (bool, error)

	// IsInteractive reports whether a terminal is attached.
	IsInteractive() bool
}

// NewPrompter picks the prompter for the given streams.
//
// A terminal on in gets a FormPrompter. Anything else (pipe, file,
// buffer) gets a LinePrompter.
func NewPrompter(in io.Reader, out io.Writer) Prompter {
	if f, ok := in.(*os.File); ok && isTerminal(f) {
		return NewFormPrompter(f, out)
	}
	return NewLinePrompter(in, out)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
