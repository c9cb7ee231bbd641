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

import "errors"

// Sentinel errors for the accounting model.
var (
	// Ledger errors
	ErrEmptyLedger = errors.New("ledger has no records")
	ErrNegativeNap = errors.New("nap duration must not be negative")

	// Input errors
	ErrInvalidInterruption = errors.New("interruption must be a non-negative number of minutes")

	// Validation errors
	ErrInvalidProfile = errors.New("invalid profile")
	ErrInvalidRecord  = errors.New("invalid sleep record")
)
