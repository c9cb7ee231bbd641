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
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/AleutianAI/sleepdebt/pkg/ux"
)

// FormPrompter asks each question as a single-field huh form.
//
// Validation errors are shown inline under the field and the user stays
// on it until the answer is valid. Ctrl+C returns ErrCancelled.
type FormPrompter struct {
	in  *os.File
	out io.Writer
}

// NewFormPrompter returns a FormPrompter reading keys from in.
func NewFormPrompter(in *os.File, out io.Writer) *FormPrompter {
	return &FormPrompter{in: in, out: out}
}

// Ask shows q as a text input.
func (p *FormPrompter) Ask(ctx context.Context, q Question) (string, error) {
	if !p.IsInteractive() {
		return "", ErrNonInteractive
	}

	var value string
	input := huh.NewInput().
		Title(q.Title).
		Placeholder(placeholderFor(q)).
		Value(&value).
		Validate(func(s string) error {
			_, err := q.resolve(s)
			return err
		})

	if err := p.run(ctx, input); err != nil {
		return "", fmt.Errorf("ask %s: %w", q.Key, err)
	}
	return q.resolve(value)
}

// Confirm shows a Yes/No toggle. The default is No.
func (p *FormPrompter) Confirm(ctx context.Context, text string) (bool, error) {
	if !p.IsInteractive() {
		return false, ErrNonInteractive
	}

	var confirmed bool
	field := huh.NewConfirm().
		Title(text).
		Affirmative("Yes").
		Negative("No").
		Value(&confirmed)

	if err := p.run(ctx, field); err != nil {
		return false, fmt.Errorf("confirm: %w", err)
	}
	return confirmed, nil
}

// IsInteractive reports whether in is a terminal.
func (p *FormPrompter) IsInteractive() bool {
	return p.in != nil && isTerminal(p.in)
}

func (p *FormPrompter) run(ctx context.Context, field huh.Field) error {
	form := huh.NewForm(huh.NewGroup(field)).
		WithTheme(sleepTheme()).
		WithShowHelp(false).
		WithInput(p.in).
		WithOutput(p.out)

	err := form.RunWithContext(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, huh.ErrUserAborted), ctx.Err() != nil:
		return ErrCancelled
	default:
		return err
	}
}

// placeholderFor shows the default when there is no explicit example.
func placeholderFor(q Question) string {
	if q.Placeholder != "" {
		return q.Placeholder
	}
	return q.Default
}

// sleepTheme returns the huh theme in the night palette used by pkg/ux.
func sleepTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Base = t.Focused.Base.BorderForeground(ux.ColorTwilight)
	t.Focused.Title = t.Focused.Title.Foreground(ux.ColorMoon).Bold(true)
	t.Focused.Description = t.Focused.Description.Foreground(ux.ColorSlate)
	t.Focused.ErrorIndicator = t.Focused.ErrorIndicator.Foreground(ux.ColorError)
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(ux.ColorError)
	t.Focused.TextInput.Cursor = t.Focused.TextInput.Cursor.Foreground(ux.ColorDusk)
	t.Focused.TextInput.Prompt = t.Focused.TextInput.Prompt.Foreground(ux.ColorDusk)
	t.Focused.TextInput.Placeholder = t.Focused.TextInput.Placeholder.Foreground(ux.ColorSlate)
	t.Focused.FocusedButton = t.Focused.FocusedButton.
		Foreground(lipgloss.Color("#0B1026")).
		Background(ux.ColorDusk)
	t.Focused.BlurredButton = t.Focused.BlurredButton.
		Foreground(ux.ColorMoon).
		Background(lipgloss.Color("#1A2140"))

	t.Blurred = t.Focused
	t.Blurred.Base = t.Blurred.Base.BorderStyle(lipgloss.HiddenBorder())

	return t
}

var _ Prompter = (*FormPrompter)(nil)
