// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package sleep implements the sleep-debt accounting model.
//
// The model has three parts:
//
//   - Profile: a person's parameters and their age-derived ideal sleep,
//     fixed once at enrollment.
//   - Ledger: the ordered history of nightly records. Each record stores
//     the cumulative balance, so the running debt is always the debt of
//     the last record.
//   - Calculator: pure functions turning one night's raw inputs into
//     total sleep and the new cumulative debt.
//
// # Sign Convention
//
// Debt is expressed in hours. Positive values are a deficit, zero or
// negative values a surplus. A surplus is carried forward as a credit.
//
// # Cumulative Balance
//
//	debt[i] = (idealSleep - totalSleep[i]) + debt[i-1]
//
// where debt[i-1] already includes any nap offset applied to record i-1
// before record i was computed. The ledger never re-sums history.
//
// Everything in this package is pure and free of I/O.
package sleep
