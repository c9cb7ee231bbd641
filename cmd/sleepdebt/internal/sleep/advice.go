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

// Debt thresholds for Classify, in hours. Upper bounds are inclusive.
const (
	ShortNapMaxDebt     = 1.0
	SleepEarlierMaxDebt = 3.0
)

// Suggestion identifies the recommendation for a debt balance.
type Suggestion string

const (
	SuggestNone         Suggestion = "none"
	SuggestShortNap     Suggestion = "short-nap"
	SuggestSleepEarlier Suggestion = "sleep-earlier"
	SuggestCatchUp      Suggestion = "catch-up"
)

// Advice is the classified outcome of a session.
type Advice struct {
	Debt       float64
	Suggestion Suggestion
	Tip        string
}

// InDebt reports whether the balance is a deficit.
func (a Advice) InDebt() bool {
	return a.Suggestion != SuggestNone
}

// Classify maps a cumulative debt to a suggestion:
//
//	debt > 3       -> plan a multi-day catch-up
//	1 < debt <= 3  -> sleep an hour earlier tonight
//	0 < debt <= 1  -> take a short nap
//	debt <= 0      -> no debt
func Classify(debt float64) Advice {
	a := Advice{Debt: debt}
	switch {
	case debt <= 0:
		a.Suggestion = SuggestNone
		a.Tip = "Congratulations! You have no sleep debt."
	case debt <= ShortNapMaxDebt:
		a.Suggestion = SuggestShortNap
		a.Tip = "Take a short nap of 20-30 minutes."
	case debt <= SleepEarlierMaxDebt:
		a.Suggestion = SuggestSleepEarlier
		a.Tip = "Try sleeping earlier tonight by an hour."
	default:
		a.Suggestion = SuggestCatchUp
		a.Tip = "Plan to catch up on sleep over the next few days."
	}
	return a
}
