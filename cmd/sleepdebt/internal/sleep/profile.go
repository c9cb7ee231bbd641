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
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Age breakpoints for DeriveIdealSleep. Bounds are inclusive.
const (
	ChildMaxAge = 12
	TeenMaxAge  = 18
	AdultMaxAge = 64
)

// Ideal nightly sleep per age band, in hours.
const (
	ChildIdealSleep  = 10.0
	TeenIdealSleep   = 9.0
	AdultIdealSleep  = 8.0
	SeniorIdealSleep = 7.0
)

// HoursPerDay bounds every reported duration: valid values lie in (0, 24).
const HoursPerDay = 24.0

// wakeUpPattern matches a 24-hour "HH:MM" clock time.
var wakeUpPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// shortHourPattern matches the single-digit hour form ("7:00") found in
// older data files.
var shortHourPattern = regexp.MustCompile(`^[0-9]:[0-5][0-9]$`)

// =============================================================================
// Shared Validator Instance
// =============================================================================

// profileValidate is the validator instance for Profile.
// Initialized in init() with custom validators.
var profileValidate *validator.Validate

func init() {
	profileValidate = validator.New(validator.WithRequiredStructEnabled())

	_ = profileValidate.RegisterValidation("wakeup", validateWakeUp)
	_ = profileValidate.RegisterValidation("idealsleep", validateIdealSleep)
}

// validateWakeUp checks a string field against the HH:MM pattern.
func validateWakeUp(fl validator.FieldLevel) bool {
	return IsWakeUpTime(fl.Field().String())
}

// validateIdealSleep checks that a float field holds one of the four
// age-band targets.
func validateIdealSleep(fl validator.FieldLevel) bool {
	switch fl.Field().Float() {
	case ChildIdealSleep, TeenIdealSleep, AdultIdealSleep, SeniorIdealSleep:
		return true
	default:
		return false
	}
}

// IsWakeUpTime reports whether s is a valid 24-hour "HH:MM" time.
func IsWakeUpTime(s string) bool {
	return wakeUpPattern.MatchString(s)
}

// =============================================================================
// Profile
// =============================================================================

// Profile holds a person's sleep parameters.
//
// # Description
//
// IdealSleep is derived from Age exactly once, by NewProfile, and then
// stored. Later runs read the stored value and never recompute it, so the
// target stays fixed at enrollment even if the person ages into another
// band.
//
// # Fields
//
//   - Name: Display name, must not be blank.
//   - Age: Age in whole years at enrollment, >= 0.
//   - AvgSleep: Self-reported usual nightly sleep, informational only.
//   - WakeUpTime: Desired wake-up time, "HH:MM" 24-hour clock.
//   - IdealSleep: Target nightly sleep in hours, one of 10, 9, 8, 7.
type Profile struct {
	Name       string  `json:"name" validate:"required"`
	Age        int     `json:"age" validate:"min=0"`
	AvgSleep   Hours   `json:"avgSleep" validate:"gt=0,lt=24"`
	WakeUpTime string  `json:"wakeUpTime" validate:"wakeup"`
	IdealSleep float64 `json:"idealSleep" validate:"idealsleep"`
}

// DeriveIdealSleep maps an age to the recommended nightly sleep in hours.
//
// # Description
//
// Bands are evaluated in order and the first match wins:
//
//	age <= 12 -> 10
//	age <= 18 -> 9
//	age <= 64 -> 8
//	otherwise -> 7
//
// Negative ages fall into the first band. Callers reject them at the
// input boundary.
func DeriveIdealSleep(age int) float64 {
	switch {
	case age <= ChildMaxAge:
		return ChildIdealSleep
	case age <= TeenMaxAge:
		return TeenIdealSleep
	case age <= AdultMaxAge:
		return AdultIdealSleep
	default:
		return SeniorIdealSleep
	}
}

// NewProfile creates a validated Profile and derives its ideal sleep.
//
// # Inputs
//
//   - name: Display name. Surrounding whitespace is trimmed.
//   - age: Age in years, >= 0.
//   - avgSleep: Usual nightly sleep in hours, in (0, 24).
//   - wakeUpTime: "HH:MM" 24-hour clock time.
//
// # Outputs
//
//   - *Profile: Profile with IdealSleep set from age.
//   - error: Wraps ErrInvalidProfile when any field is out of range.
func NewProfile(name string, age int, avgSleep float64, wakeUpTime string) (*Profile, error) {
	p := &Profile{
		Name:       strings.TrimSpace(name),
		Age:        age,
		AvgSleep:   Hours(avgSleep),
		WakeUpTime: strings.TrimSpace(wakeUpTime),
		IdealSleep: DeriveIdealSleep(age),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the Profile invariants.
//
// Returns an error wrapping ErrInvalidProfile that names each failing
// field, or nil.
func (p *Profile) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: profile is nil", ErrInvalidProfile)
	}
	if err := profileValidate.Struct(p); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			fields := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidProfile, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	return nil
}

// ValidateStored checks a profile read back from storage.
//
// Only IdealSleep is enforced, since every debt computation depends on
// it. Older data files may hold a blank name or a "7:00" wake-up time;
// those are kept as they are rather than reported as corruption.
func (p *Profile) ValidateStored() error {
	if p == nil {
		return fmt.Errorf("%w: profile is nil", ErrInvalidProfile)
	}
	if err := profileValidate.Var(p.IdealSleep, "idealsleep"); err != nil {
		return fmt.Errorf("%w: IdealSleep (idealsleep)", ErrInvalidProfile)
	}
	return nil
}

// CanonicalWakeUpTime pads a single-digit hour: "7:00" becomes "07:00".
// Any other value is returned unchanged.
func CanonicalWakeUpTime(s string) string {
	s = strings.TrimSpace(s)
	if shortHourPattern.MatchString(s) {
		return "0" + s
	}
	return s
}

// =============================================================================
// Hours
// =============================================================================

// Hours is a duration in hours that also decodes from a JSON string.
//
// Older data files stored the average-sleep answer verbatim, e.g.
// "avgSleep": "6.5". Hours accepts both that and a plain number, and
// always encodes as a number.
type Hours float64

// UnmarshalJSON accepts a JSON number or a numeric JSON string.
func (h *Hours) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*h = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("hours %q: %w", s, err)
		}
		*h = Hours(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*h = Hours(f)
	return nil
}
