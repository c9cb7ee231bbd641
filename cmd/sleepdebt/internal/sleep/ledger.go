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
	"math"
	"time"
)

// DateLayout is the calendar-date format of Record.Date.
const DateLayout = time.DateOnly

// Record is one night in the ledger.
//
// SleepDebt is the cumulative balance after this night, not the night's
// own delta. TotalSleep may be negative when interruptions exceed the
// reported sleep.
type Record struct {
	Date       string  `json:"date"`
	TotalSleep float64 `json:"totalSleep"`
	SleepDebt  float64 `json:"sleepDebt"`
}

// NewRecord builds a record dated on the local calendar day of now.
func NewRecord(now time.Time, totalSleep, sleepDebt float64) Record {
	return Record{
		Date:       now.Format(DateLayout),
		TotalSleep: totalSleep,
		SleepDebt:  sleepDebt,
	}
}

// Validate checks the date format and that both values are finite.
func (r Record) Validate() error {
	if _, err := time.Parse(DateLayout, r.Date); err != nil {
		return fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidRecord, r.Date)
	}
	if !isFinite(r.TotalSleep) || !isFinite(r.SleepDebt) {
		return fmt.Errorf("%w: %s has a non-finite value", ErrInvalidRecord, r.Date)
	}
	return nil
}

// Ledger is the chronological list of records. Insertion order is the
// only order; records are never reordered or removed.
type Ledger []Record

// Len returns the number of records.
func (l Ledger) Len() int {
	return len(l)
}

// Last returns the most recent record, if any.
func (l Ledger) Last() (Record, bool) {
	if len(l) == 0 {
		return Record{}, false
	}
	return l[len(l)-1], true
}

// PreviousDebt returns the running debt: 0 for an empty ledger, otherwise
// the SleepDebt of the last record.
func (l Ledger) PreviousDebt() float64 {
	last, ok := l.Last()
	if !ok {
		return 0
	}
	return last.SleepDebt
}

// ApplyNapOffset reduces the debt of the most recent record in place.
//
// # Description
//
// This is the only mutation allowed on an existing record. It models a
// nap taken after that record was made and before tonight's record is
// appended. There is no floor at zero: the balance may become a surplus,
// which then counts as a credit tonight.
//
// # Inputs
//
//   - napHours: Nap length in hours, >= 0.
//
// # Outputs
//
//   - error: ErrEmptyLedger if there is no record to amend,
//     ErrNegativeNap if napHours is negative or not finite.
func (l Ledger) ApplyNapOffset(napHours float64) error {
	if len(l) == 0 {
		return ErrEmptyLedger
	}
	if napHours < 0 || !isFinite(napHours) {
		return fmt.Errorf("%w: %v", ErrNegativeNap, napHours)
	}
	l[len(l)-1].SleepDebt -= napHours
	return nil
}

// Append adds a record to the end of the ledger.
//
// Dates are not checked for ordering or duplicates: two runs on the same
// day produce two records with the same date.
func (l *Ledger) Append(r Record) {
	*l = append(*l, r)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
