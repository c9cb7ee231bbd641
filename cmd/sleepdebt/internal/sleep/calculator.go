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
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerHour converts interruption and nap minutes to hours.
const MinutesPerHour = 60.0

// DefaultInterruptions is the answer used when the user reports none.
const DefaultInterruptions = "0"

// MinutesToHours converts minutes to hours.
func MinutesToHours(minutes float64) float64 {
	return minutes / MinutesPerHour
}

// ComputeTotalSleep subtracts interruptions from the reported sleep.
//
//	total = reported - sum(interruptionMinutes) / 60
//
// The result is not clamped and may be negative.
func ComputeTotalSleep(reportedHours float64, interruptionMinutes []float64) float64 {
	var sum float64
	for _, m := range interruptionMinutes {
		sum += m
	}
	return reportedHours - MinutesToHours(sum)
}

// ComputeSleepDebt returns the new cumulative balance.
//
//	debt = (idealSleep - totalSleep) + previousDebt
//
// previousDebt must be read after any nap offset has been applied.
func ComputeSleepDebt(idealSleep, totalSleep, previousDebt float64) float64 {
	return (idealSleep - totalSleep) + previousDebt
}

// ParseInterruptions parses a comma-delimited list of minute values.
//
// # Description
//
// "10,5" is two interruptions of 10 and 5 minutes. A blank string means
// no interruptions. Each token is trimmed and must be a finite number
// >= 0; empty tokens ("10,,5") are rejected.
//
// # Outputs
//
//   - []float64: Minutes per interruption, never nil on success.
//   - error: Wraps ErrInvalidInterruption naming the offending token.
func ParseInterruptions(raw string) ([]float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = DefaultInterruptions
	}
	tokens := strings.Split(raw, ",")
	minutes := make([]float64, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil || v < 0 || !isFinite(v) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidInterruption, tok)
		}
		minutes = append(minutes, v)
	}
	return minutes, nil
}
