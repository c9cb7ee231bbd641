// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package prompt

import (
	"context"
	"fmt"
)

// MockCall records one call to MockPrompter.
type MockCall struct {
	Method string // "Ask" or "Confirm"
	Key    string // Question.Key for Ask, empty for Confirm
	Prompt string // Question.Title or the Confirm text
}

// MockPrompter is a scripted Prompter for tests.
//
// # Description
//
// AskFunc and ConfirmFunc take precedence when set. Otherwise answers
// come from Answers (per question key, consumed in order) and Confirms
// (consumed in order). A missing scripted answer returns ErrCancelled, so
// a test that under-scripts a session behaves like a user pressing
// Ctrl+C at that point.
//
// Scripted answers still go through Question.Validate and Default; an
// invalid scripted answer is returned as an error rather than re-asked.
type MockPrompter struct {
	AskFunc     func(ctx context.Context, q Question) (string, error)
	ConfirmFunc func(ctx context.Context, text string) (bool, error)

	Answers  map[string][]string
	Confirms []bool

	Interactive bool
	Calls       []MockCall
}

// NewMockPrompter returns a MockPrompter with the given scripted answers.
func NewMockPrompter(answers map[string][]string, confirms ...bool) *MockPrompter {
	if answers == nil {
		answers = make(map[string][]string)
	}
	return &MockPrompter{Answers: answers, Confirms: confirms}
}

// Ask returns the next scripted answer for q.Key.
func (m *MockPrompter) Ask(ctx context.Context, q Question) (string, error) {
	m.Calls = append(m.Calls, MockCall{Method: "Ask", Key: q.Key, Prompt: q.Title})
	if m.AskFunc != nil {
		return m.AskFunc(ctx, q)
	}
	if ctx.Err() != nil {
		return "", ErrCancelled
	}

	queue := m.Answers[q.Key]
	if len(queue) == 0 {
		return "", fmt.Errorf("ask %s: %w", q.Key, ErrCancelled)
	}
	m.Answers[q.Key] = queue[1:]

	answer, err := q.resolve(queue[0])
	if err != nil {
		return "", fmt.Errorf("ask %s: invalid scripted answer %q: %w", q.Key, queue[0], err)
	}
	return answer, nil
}

// Confirm returns the next scripted confirmation.
func (m *MockPrompter) Confirm(ctx context.Context, text string) (bool, error) {
	m.Calls = append(m.Calls, MockCall{Method: "Confirm", Prompt: text})
	if m.ConfirmFunc != nil {
		return m.ConfirmFunc(ctx, text)
	}
	if ctx.Err() != nil {
		return false, ErrCancelled
	}

	if len(m.Confirms) == 0 {
		return false, fmt.Errorf("confirm: %w", ErrCancelled)
	}
	answer := m.Confirms[0]
	m.Confirms = m.Confirms[1:]
	return answer, nil
}

// IsInteractive returns the Interactive field.
func (m *MockPrompter) IsInteractive() bool {
	return m.Interactive
}

// Keys returns the Question keys asked so far, in order.
func (m *MockPrompter) Keys() []string {
	var keys []string
	for _, c := range m.Calls {
		if c.Method == "Ask" {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

// Reset clears recorded calls.
func (m *MockPrompter) Reset() {
	m.Calls = nil
}

var _ Prompter = (*MockPrompter)(nil)
