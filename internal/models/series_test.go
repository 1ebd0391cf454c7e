// Find My History - Location History Playback Widget
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/findmyhistory

package models

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
)

var base = time.Date(2025, 1, 27, 10, 0, 0, 0, time.UTC)

func seriesAt(offsets ...time.Duration) SampleSeries {
	s := make(SampleSeries, len(offsets))
	for i, off := range offsets {
		s[i] = Sample{Time: base.Add(off), Latitude: 54.9 + float64(i)*0.001, Longitude: 23.9, DeviceID: "device_tracker.iphone"}
	}
	return s
}

func TestNearest_Empty(t *testing.T) {
	t.Parallel()

	var s SampleSeries
	if _, ok := s.Nearest(base); ok {
		t.Fatal("expected no sample for empty series")
	}
	if idx := s.NearestIndex(base); idx != -1 {
		t.Errorf("NearestIndex() = %d, want -1", idx)
	}
}

func TestNearest(t *testing.T) {
	t.Parallel()

	s := seriesAt(0, 10*time.Minute, 20*time.Minute, 30*time.Minute)

	tests := []struct {
		name   string
		target time.Time
		want   int
	}{
		{"before first", base.Add(-time.Hour), 0},
		{"exact first", base, 0},
		{"closer to second", base.Add(6 * time.Minute), 1},
		{"exact third", base.Add(20 * time.Minute), 2},
		{"after last", base.Add(2 * time.Hour), 3},
		{"tie between first and second resolves to first", base.Add(5 * time.Minute), 0},
		{"tie between third and fourth resolves to third", base.Add(25 * time.Minute), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := s.NearestIndex(tt.target); got != tt.want {
				t.Errorf("NearestIndex(%v) = %d, want %d", tt.target, got, tt.want)
			}
		})
	}
}

func TestNearest_DuplicateTimesPreferEarliestIndex(t *testing.T) {
	t.Parallel()

	s := seriesAt(0, 10*time.Minute, 10*time.Minute)
	if got := s.NearestIndex(base.Add(10 * time.Minute)); got != 1 {
		t.Errorf("NearestIndex() = %d, want 1", got)
	}
}

func TestNearest_MatchesBruteForceMinimizer(t *testing.T) {
	t.Parallel()

	s := seriesAt(0, 3*time.Second, 17*time.Second, 17*time.Second, 40*time.Second, 41*time.Second)
	for off := -5 * time.Second; off <= 50*time.Second; off += 500 * time.Millisecond {
		target := base.Add(off)
		got := s.NearestIndex(target)

		want := 0
		for i := range s {
			if absDuration(s[i].Time.Sub(target)) < absDuration(s[want].Time.Sub(target)) {
				want = i
			}
		}
		if got != want {
			t.Fatalf("target %v: NearestIndex() = %d, want %d", off, got, want)
		}
	}
}

func TestPath_SkipsMissingCoordinates(t *testing.T) {
	t.Parallel()

	s := SampleSeries{
		{Time: base, Latitude: 54.1, Longitude: 23.1},
		{Time: base.Add(time.Minute), Latitude: 0, Longitude: 23.2},
		{Time: base.Add(2 * time.Minute), Latitude: 54.3, Longitude: 0},
		{Time: base.Add(3 * time.Minute), Latitude: 54.4, Longitude: 23.4},
	}

	path := s.Path()
	if len(path) != 2 {
		t.Fatalf("len(Path()) = %d, want 2", len(path))
	}
	if path[0] != [2]float64{54.1, 23.1} || path[1] != [2]float64{54.4, 23.4} {
		t.Errorf("unexpected path %v", path)
	}
}

func TestTimeAtAndPositionOf(t *testing.T) {
	t.Parallel()

	s := seriesAt(0, time.Hour, 2*time.Hour)

	tests := []struct {
		position float64
		want     time.Time
	}{
		{0, base},
		{0.5, base.Add(time.Hour)},
		{1, base.Add(2 * time.Hour)},
		{-1, base},
		{2, base.Add(2 * time.Hour)},
	}
	for _, tt := range tests {
		got, ok := s.TimeAt(tt.position)
		if !ok {
			t.Fatal("TimeAt() returned !ok for non-empty series")
		}
		if !got.Equal(tt.want) {
			t.Errorf("TimeAt(%v) = %v, want %v", tt.position, got, tt.want)
		}
	}

	if pos := s.PositionOf(base.Add(30 * time.Minute)); pos != 0.25 {
		t.Errorf("PositionOf() = %v, want 0.25", pos)
	}

	single := seriesAt(0)
	if pos := single.PositionOf(base); pos != 1 {
		t.Errorf("PositionOf() on zero span = %v, want 1", pos)
	}
}

func TestStats(t *testing.T) {
	t.Parallel()

	s := seriesAt(0, time.Hour, 3*time.Hour)
	s[1].InZone = true

	stats := s.Stats()
	if stats.TotalLocations != 3 || stats.InZoneCount != 1 || stats.OutOfZoneCount != 2 {
		t.Errorf("unexpected counts %+v", stats)
	}
	if stats.Duration != 3*time.Hour {
		t.Errorf("Duration = %v, want 3h", stats.Duration)
	}
	if stats.First == nil || !stats.First.Equal(base) {
		t.Errorf("First = %v, want %v", stats.First, base)
	}

	empty := SampleSeries{}.Stats()
	if empty.TotalLocations != 0 || empty.First != nil {
		t.Errorf("unexpected empty stats %+v", empty)
	}
}

func TestSampleUnmarshal(t *testing.T) {
	t.Parallel()

	body := `{"locations":[
		{"time":"2025-01-27T10:00:00Z","latitude":54.8985,"longitude":23.9036,"in_zone":true,"zone_name":"home"},
		{"time":"2025-01-27T10:05:00.123+00:00","latitude":54.9,"longitude":23.91,"in_zone":false,"device_id":"device_tracker.iphone","device_name":"Alex's iPhone"},
		{"time":"2025-01-27T10:10:00","latitude":null,"longitude":23.92,"in_zone":false}
	]}`

	var resp LocationsResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(resp.Locations) != 3 {
		t.Fatalf("len(Locations) = %d, want 3", len(resp.Locations))
	}

	first := resp.Locations[0]
	if !first.Time.Equal(base) {
		t.Errorf("first.Time = %v, want %v", first.Time, base)
	}
	if first.Latitude != 54.8985 || first.ZoneLabel() != "home" {
		t.Errorf("unexpected first sample %+v", first)
	}
	if first.DeviceLabel() != "" {
		t.Errorf("DeviceLabel() = %q, want empty device id", first.DeviceLabel())
	}

	second := resp.Locations[1]
	if second.DeviceLabel() != "Alex's iPhone" {
		t.Errorf("DeviceLabel() = %q", second.DeviceLabel())
	}
	if second.ZoneLabel() != UnknownZoneLabel {
		t.Errorf("ZoneLabel() = %q, want %q", second.ZoneLabel(), UnknownZoneLabel)
	}

	third := resp.Locations[2]
	if !third.Time.Equal(base.Add(10 * time.Minute)) {
		t.Errorf("zone-less time = %v", third.Time)
	}
	if third.HasCoordinates() {
		t.Error("sample with null latitude should not have coordinates")
	}
}

func TestLocationsResponse_MissingField(t *testing.T) {
	t.Parallel()

	var resp LocationsResponse
	if err := json.Unmarshal([]byte(`{}`), &resp); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !resp.Locations.IsEmpty() {
		t.Errorf("expected empty series, got %d", len(resp.Locations))
	}
}

func TestParseTimestamp_Invalid(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "yesterday", "2025-13-45T00:00:00Z"} {
		if _, err := ParseTimestamp(in); err == nil {
			t.Errorf("ParseTimestamp(%q) expected error", in)
		}
	}
}
