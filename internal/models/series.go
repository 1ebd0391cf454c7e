// Find My History - Location History Playback Widget
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/findmyhistory

package models

import (
	"time"
)

// SampleSeries is the ordered collection of samples for the active query.
// Order is whatever the location API returned (ascending time); it is never re-sorted.
type SampleSeries []Sample

// Len returns the number of samples.
func (s SampleSeries) Len() int {
	return len(s)
}

// IsEmpty reports whether the series has no samples.
func (s SampleSeries) IsEmpty() bool {
	return len(s) == 0
}

// First returns the first sample. ok is false for an empty series.
func (s SampleSeries) First() (Sample, bool) {
	if len(s) == 0 {
		return Sample{}, false
	}
	return s[0], true
}

// Last returns the last sample. ok is false for an empty series.
func (s SampleSeries) Last() (Sample, bool) {
	if len(s) == 0 {
		return Sample{}, false
	}
	return s[len(s)-1], true
}

// Span returns last.Time - first.Time, or zero for an empty series.
func (s SampleSeries) Span() time.Duration {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].Time.Sub(s[0].Time)
}

// Nearest returns the sample closest in time to target.
//
// The scan is linear from the first element and only a strictly smaller
// distance replaces the current best, so on exact ties the earliest sample wins.
// ok is false when the series is empty.
func (s SampleSeries) Nearest(target time.Time) (Sample, bool) {
	idx := s.NearestIndex(target)
	if idx < 0 {
		return Sample{}, false
	}
	return s[idx], true
}

// NearestIndex is Nearest returning the index, or -1 for an empty series.
func (s SampleSeries) NearestIndex(target time.Time) int {
	if len(s) == 0 {
		return -1
	}

	best := 0
	minDiff := absDuration(s[0].Time.Sub(target))
	for i := 1; i < len(s); i++ {
		diff := absDuration(s[i].Time.Sub(target))
		if diff < minDiff {
			minDiff = diff
			best = i
		}
	}
	return best
}

// Path returns [lat, lon] pairs for samples with both coordinates, in series order.
func (s SampleSeries) Path() [][2]float64 {
	path := make([][2]float64, 0, len(s))
	for _, sample := range s {
		if sample.HasCoordinates() {
			path = append(path, [2]float64{sample.Latitude, sample.Longitude})
		}
	}
	return path
}

// TimeAt maps a normalized position in [0,1] linearly onto [first, last].
// Positions outside the range are clamped. ok is false for an empty series.
func (s SampleSeries) TimeAt(position float64) (time.Time, bool) {
	first, ok := s.First()
	if !ok {
		return time.Time{}, false
	}
	if position < 0 {
		position = 0
	}
	if position > 1 {
		position = 1
	}
	offset := time.Duration(float64(s.Span()) * position)
	return first.Time.Add(offset), true
}

// PositionOf is the inverse of TimeAt: the normalized position of t within the series span.
// A zero-length span reports 1 (the end).
func (s SampleSeries) PositionOf(t time.Time) float64 {
	first, ok := s.First()
	if !ok {
		return 0
	}
	span := s.Span()
	if span <= 0 {
		return 1
	}
	pos := float64(t.Sub(first.Time)) / float64(span)
	if pos < 0 {
		return 0
	}
	if pos > 1 {
		return 1
	}
	return pos
}

// SeriesStats summarizes a series for the widget's stats area.
type SeriesStats struct {
	TotalLocations int           `json:"total_locations"`
	InZoneCount    int           `json:"in_zone_count"`
	OutOfZoneCount int           `json:"out_of_zone_count"`
	First          *time.Time    `json:"first,omitempty"`
	Last           *time.Time    `json:"last,omitempty"`
	Duration       time.Duration `json:"duration_ns"`
}

// Stats computes summary statistics for the series.
func (s SampleSeries) Stats() SeriesStats {
	stats := SeriesStats{TotalLocations: len(s)}
	for _, sample := range s {
		if sample.InZone {
			stats.InZoneCount++
		}
	}
	stats.OutOfZoneCount = stats.TotalLocations - stats.InZoneCount

	if first, ok := s.First(); ok {
		last, _ := s.Last()
		f, l := first.Time, last.Time
		stats.First = &f
		stats.Last = &l
		stats.Duration = s.Span()
	}
	return stats
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
