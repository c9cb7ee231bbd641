// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/sleepdebt/cmd/sleepdebt/internal/sleep"
	"github.com/AleutianAI/sleepdebt/pkg/ux"
)

// runHistory prints the ledger, oldest first.
func (a *app) runHistory(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	if limit < 0 {
		return fmt.Errorf("--limit must not be negative, got %d", limit)
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	state, err := store.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	if state.Profile == nil {
		a.console.Info("No profile yet. Run sleepdebt to create one.")
		return nil
	}
	if state.History.Len() == 0 {
		a.console.Info(fmt.Sprintf("No nights recorded yet for %s.", state.Profile.Name))
		return nil
	}

	records := state.History
	if limit > 0 && limit < len(records) {
		records = records[len(records)-limit:]
	}

	if ux.GetPersonality().Level == ux.PersonalityMachine {
		writeHistoryTSV(a.console.Out, records)
		return nil
	}

	a.console.Title(fmt.Sprintf("%s %s's sleep history", ux.IconMoon, state.Profile.Name))
	a.console.Muted(fmt.Sprintf("Ideal sleep %s h · wake up at %s",
		ux.FormatHours(state.Profile.IdealSleep), state.Profile.WakeUpTime))
	fmt.Fprintln(a.console.Out, historyTable(records))

	advice := sleep.Classify(state.History.PreviousDebt())
	if advice.InDebt() {
		a.console.Warning(fmt.Sprintf("Current sleep debt: %s hours", ux.FormatHours(advice.Debt)))
		if ux.GetPersonality().ShowTips {
			a.console.Bullet(advice.Tip)
		}
	} else {
		a.console.Success(fmt.Sprintf("Current balance: %s hours", ux.FormatHours(advice.Debt)))
	}
	return nil
}

// historyTable renders records as a rounded lipgloss table. Debt cells
// are colored by their suggestion band.
func historyTable(records sleep.Ledger) string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{r.Date, ux.FormatHours(r.TotalSleep), ux.FormatHours(r.SleepDebt)})
	}

	cell := lipgloss.NewStyle().Padding(0, 1)
	header := cell.Bold(true).Foreground(ux.ColorMoon)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ux.ColorDusk)).
		Headers("Date", "Slept (h)", "Debt (h)").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			if col == 2 && row >= 0 && row < len(records) {
				return cell.Foreground(debtColor(records[row].SleepDebt)).Align(lipgloss.Right)
			}
			if col > 0 {
				return cell.Align(lipgloss.Right)
			}
			return cell
		}).
		String()
}

func debtColor(debt float64) lipgloss.Color {
	switch sleep.Classify(debt).Suggestion {
	case sleep.SuggestNone:
		return ux.ColorSuccess
	case sleep.SuggestCatchUp:
		return ux.ColorError
	default:
		return ux.ColorWarning
	}
}

// writeHistoryTSV prints one tab-separated line per record, for scripts.
func writeHistoryTSV(w io.Writer, records sleep.Ledger) {
	fmt.Fprintln(w, "date\ttotal_sleep\tsleep_debt")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.Date, ux.FormatHours(r.TotalSleep), ux.FormatHours(r.SleepDebt))
	}
}
