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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// ComputeTotalSleep Tests
// =============================================================================

func TestComputeTotalSleep(t *testing.T) {
	tests := []struct {
		name          string
		reported      float64
		interruptions []float64
		want          float64
	}{
		{"no interruptions", 8, nil, 8},
		{"empty list", 8, []float64{}, 8},
		{"two half hours", 8, []float64{30, 30}, 7},
		{"single zero", 6, []float64{0}, 6},
		{"exceeds reported sleep", 1, []float64{90}, -0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ComputeTotalSleep(tt.reported, tt.interruptions), 1e-9)
		})
	}
}

// =============================================================================
// ComputeSleepDebt Tests
// =============================================================================

func TestComputeSleepDebt(t *testing.T) {
	assert.Equal(t, 1.0, ComputeSleepDebt(8, 7, 0))
	assert.Equal(t, 2.0, ComputeSleepDebt(8, 7, 1))
	assert.Equal(t, -2.0, ComputeSleepDebt(8, 10, 0))
	assert.Equal(t, 0.5, ComputeSleepDebt(8, 9, 1.5))
	assert.Equal(t, -1.0, ComputeSleepDebt(8, 8, -1), "a surplus carries forward as credit")
}

func TestCumulativeBalance_AcrossNights(t *testing.T) {
	const ideal = 8.0
	nights := []float64{6, 9, 5.5, 8}

	var l Ledger
	for _, total := range nights {
		debt := ComputeSleepDebt(ideal, total, l.PreviousDebt())
		l.Append(Record{Date: "2025-03-01", TotalSleep: total, SleepDebt: debt})
	}

	for i, r := range l {
		prev := 0.0
		if i > 0 {
			prev = l[i-1].SleepDebt
		}
		assert.InDelta(t, (ideal-r.TotalSleep)+prev, r.SleepDebt, 1e-9, "record %d", i)
	}
	assert.InDelta(t, 3.5, l.PreviousDebt(), 1e-9)
}

// =============================================================================
// ParseInterruptions Tests
// =============================================================================

func TestParseInterruptions_Valid(t *testing.T) {
	tests := []struct {
		input string
		want  []float64
	}{
		{"", []float64{0}},
		{"   ", []float64{0}},
		{"0", []float64{0}},
		{"10,5", []float64{10, 5}},
		{" 10 , 5 ", []float64{10, 5}},
		{"2.5", []float64{2.5}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseInterruptions(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// The original tool turned non-numeric tokens into NaN and stored a NaN
// debt. Parsing is now strict and rejects the whole answer instead.
func TestParseInterruptions_RejectsMalformedTokens(t *testing.T) {
	for _, input := range []string{"ten", "10,abc", "10,,5", "-5", "10,-1", "NaN", "Inf", "5 min"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseInterruptions(input)
			assert.ErrorIs(t, err, ErrInvalidInterruption)
		})
	}
}

func TestMinutesToHours(t *testing.T) {
	assert.Equal(t, 0.5, MinutesToHours(30))
	assert.Equal(t, 1.0, MinutesToHours(60))
	assert.Equal(t, 0.0, MinutesToHours(0))
}

// =============================================================================
// Classify Tests
// =============================================================================

func TestClassify(t *testing.T) {
	tests := []struct {
		debt float64
		want Suggestion
	}{
		{-2, SuggestNone},
		{0, SuggestNone},
		{0.01, SuggestShortNap},
		{0.5, SuggestShortNap},
		{1, SuggestShortNap},
		{1.01, SuggestSleepEarlier},
		{3, SuggestSleepEarlier},
		{3.01, SuggestCatchUp},
		{12, SuggestCatchUp},
	}

	for _, tt := range tests {
		a := Classify(tt.debt)
		assert.Equal(t, tt.want, a.Suggestion, "debt %v", tt.debt)
		assert.Equal(t, tt.debt, a.Debt)
		assert.NotEmpty(t, a.Tip)
		assert.Equal(t, tt.want != SuggestNone, a.InDebt())
	}
}
