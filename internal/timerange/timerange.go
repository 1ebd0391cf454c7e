// Find My History - Location History Playback Widget
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/findmyhistory

// Package timerange converts human-readable range strings such as "24h" or
// "7d" into hour counts and query windows.
//
// Parsing never fails: a string without a "<digits><h|d>" match falls back to
// DefaultHours.
package timerange

import (
	"regexp"
	"time"
)

// DefaultHours is used when a range string contains no recognizable range.
const DefaultHours = 24

// DefaultRange is the canonical string form of DefaultHours.
const DefaultRange = "24h"

// rangePattern matches the first "<digits><unit>" occurrence anywhere in the input.
var rangePattern = regexp.MustCompile(`(\d+)([hd])`)

// Hours returns the number of hours described by value.
//
// Only the first match is used, so "3d12h" yields 72. Leading zeros are
// accepted. Overflow is not checked: digits and the day multiplier use
// ordinary int arithmetic and wrap.
func Hours(value string) int {
	match := rangePattern.FindStringSubmatch(value)
	if match == nil {
		return DefaultHours
	}

	n := parseDigits(match[1])
	if match[2] == "d" {
		return n * 24
	}
	return n
}

// parseDigits parses a run of ASCII digits modulo the int width.
func parseDigits(digits string) int {
	var n uint
	for i := 0; i < len(digits); i++ {
		n = n*10 + uint(digits[i]-'0')
	}
	return int(n)
}

// Duration returns Hours(value) as a time.Duration. Like Hours it wraps on
// overflow.
func Duration(value string) time.Duration {
	return time.Duration(Hours(value)) * time.Hour
}

// Window is a closed query interval.
type Window struct {
	Start time.Time
	End   time.Time
}

// WindowEnding returns the window of the given range that ends at end.
func WindowEnding(end time.Time, value string) Window {
	return Window{
		Start: end.Add(-Duration(value)),
		End:   end,
	}
}

// Hours returns the window length in hours.
func (w Window) Hours() float64 {
	return w.End.Sub(w.Start).Hours()
}
