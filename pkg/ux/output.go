// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ux provides rich terminal output styling for the sleepdebt CLI.
package ux

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Night-sky palette
var (
	ColorMoon     = lipgloss.Color("#C9D6FF") // Moonlight - titles
	ColorDusk     = lipgloss.Color("#7F8CFF") // Dusk - info accents, borders
	ColorTwilight = lipgloss.Color("#5A67D8") // Twilight - focused fields
	ColorSlate    = lipgloss.Color("#4A5568") // Slate - muted text, borders

	// Semantic colors (keeping standard conventions for clarity)
	ColorSuccess = lipgloss.Color("#48BB78") // Green for success
	ColorWarning = lipgloss.Color("#F4D03F") // Gold/amber for warnings
	ColorError   = lipgloss.Color("#E74C3C") // Red for errors
)

// Styles provides pre-configured lipgloss styles
var Styles = struct {
	Title   lipgloss.Style
	Muted   lipgloss.Style
	Info    lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(ColorMoon),
	Muted:   lipgloss.NewStyle().Foreground(ColorSlate),
	Info:    lipgloss.NewStyle().Foreground(ColorDusk),
	Success: lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning: lipgloss.NewStyle().Foreground(ColorWarning),
	Error:   lipgloss.NewStyle().Foreground(ColorError),
}

// Icon provides themed status icons
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconInfo    Icon = "│"
	IconBullet  Icon = "•"
	IconMoon    Icon = "☾"
	IconWave    Icon = "👋"
)

// Render returns the icon with appropriate styling
func (i Icon) Render() string {
	switch i {
	case IconSuccess:
		return Styles.Success.Render(string(i))
	case IconWarning:
		return Styles.Warning.Render(string(i))
	case IconError:
		return Styles.Error.Render(string(i))
	case IconInfo:
		return Styles.Muted.Render(string(i))
	default:
		return string(i)
	}
}

// =============================================================================
// Console
// =============================================================================

// Console writes styled status lines honoring the personality level.
//
// Normal output goes to Out. In machine mode warnings and errors go to
// Err so scripts can separate them.
type Console struct {
	Out io.Writer
	Err io.Writer
}

// NewConsole returns a Console writing to out and errOut.
func NewConsole(out, errOut io.Writer) *Console {
	return &Console{Out: out, Err: errOut}
}

// Title prints a styled title
func (c *Console) Title(text string) {
	if GetPersonality().Level == PersonalityMachine {
		return
	}
	fmt.Fprintln(c.Out, Styles.Title.Render(text))
}

// Success prints a success message with checkmark
func (c *Console) Success(text string) {
	switch GetPersonality().Level {
	case PersonalityMachine:
		fmt.Fprintf(c.Out, "OK: %s\n", text)
	case PersonalityMinimal:
		fmt.Fprintf(c.Out, "%s %s\n", IconSuccess.Render(), text)
	default:
		fmt.Fprintf(c.Out, "%s %s\n", IconSuccess.Render(), Styles.Success.Render(text))
	}
}

// Warning prints a warning message
func (c *Console) Warning(text string) {
	switch GetPersonality().Level {
	case PersonalityMachine:
		fmt.Fprintf(c.Err, "WARN: %s\n", text)
	case PersonalityMinimal:
		fmt.Fprintf(c.Out, "%s %s\n", IconWarning.Render(), text)
	default:
		fmt.Fprintf(c.Out, "%s %s\n", IconWarning.Render(), Styles.Warning.Render(text))
	}
}

// Error prints an error message
func (c *Console) Error(text string) {
	switch GetPersonality().Level {
	case PersonalityMachine:
		fmt.Fprintf(c.Err, "ERROR: %s\n", text)
	case PersonalityMinimal:
		fmt.Fprintf(c.Out, "%s %s\n", IconError.Render(), text)
	default:
		fmt.Fprintf(c.Out, "%s %s\n", IconError.Render(), Styles.Error.Render(text))
	}
}

// Info prints an informational message
func (c *Console) Info(text string) {
	switch GetPersonality().Level {
	case PersonalityMachine:
		fmt.Fprintln(c.Out, text)
	default:
		fmt.Fprintf(c.Out, "%s %s\n", IconInfo.Render(), Styles.Info.Render(text))
	}
}

// Bullet prints an indented suggestion line.
func (c *Console) Bullet(text string) {
	switch GetPersonality().Level {
	case PersonalityMachine:
		fmt.Fprintf(c.Out, " - %s\n", text)
	default:
		fmt.Fprintf(c.Out, "  %s %s\n", IconBullet.Render(), Styles.Warning.Render(text))
	}
}

// Muted prints muted/secondary text
func (c *Console) Muted(text string) {
	if GetPersonality().Level == PersonalityMachine {
		return
	}
	fmt.Fprintln(c.Out, Styles.Muted.Render(text))
}

// Farewell prints the goodbye line used when a session is cancelled.
func (c *Console) Farewell() {
	switch GetPersonality().Level {
	case PersonalityMachine:
		fmt.Fprintln(c.Out, "cancelled")
	default:
		fmt.Fprintf(c.Out, "%s until next time!\n", IconWave)
	}
}

// FormatHours renders a duration in hours with two decimals, e.g. "1.50".
func FormatHours(h float64) string {
	return fmt.Sprintf("%.2f", h)
}
