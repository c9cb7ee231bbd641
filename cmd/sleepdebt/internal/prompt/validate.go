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
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/AleutianAI/sleepdebt/cmd/sleepdebt/internal/sleep"
)

// Validators are pure predicates over the raw answer. The error text is
// shown to the user verbatim, so keep it short.

// NotBlank rejects empty or whitespace-only answers.
func NotBlank(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("please enter a value")
	}
	return nil
}

// NonNegativeInt accepts whole numbers >= 0.
func NonNegativeInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return errors.New("please enter a whole number")
	}
	if n < 0 {
		return errors.New("must not be negative")
	}
	return nil
}

// HoursInDay accepts a number of hours strictly between 0 and 24.
func HoursInDay(s string) error {
	f, err := parseFloat(s)
	if err != nil {
		return err
	}
	if f <= 0 || f >= sleep.HoursPerDay {
		return errors.New("must be more than 0 and less than 24 hours")
	}
	return nil
}

// WakeUpTime accepts a 24-hour "HH:MM" time.
func WakeUpTime(s string) error {
	if !sleep.IsWakeUpTime(strings.TrimSpace(s)) {
		return errors.New("use 24-hour HH:MM, e.g. 07:00")
	}
	return nil
}

// NonNegativeFloat accepts any finite number >= 0.
func NonNegativeFloat(s string) error {
	f, err := parseFloat(s)
	if err != nil {
		return err
	}
	if f < 0 {
		return errors.New("must not be negative")
	}
	return nil
}

// MinutesList accepts a comma-separated list of non-negative minute
// values. Blank means no interruptions.
func MinutesList(s string) error {
	if _, err := sleep.ParseInterruptions(s); err != nil {
		return errors.New("use minutes separated by commas, e.g. 10,5")
	}
	return nil
}

// parseFloat parses a trimmed, finite float.
func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("please enter a number")
	}
	return f, nil
}
