// Find My History - Location History Playback Widget
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/findmyhistory

package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Placeholder labels used when optional sample fields are missing.
const (
	UnknownZoneLabel = "Unknown"
)

// timestampLayouts lists the accepted wire formats for sample times, tried in order.
// Zone-less layouts are interpreted as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
}

// Sample is one recorded device location as returned by the location API.
// Optional fields are pointers; use the label helpers for rendering.
//
// A Sample is immutable once decoded.
type Sample struct {
	Time       time.Time `json:"time"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	InZone     bool      `json:"in_zone"`
	ZoneName   *string   `json:"zone_name,omitempty"`
	DeviceID   string    `json:"device_id,omitempty"`
	DeviceName *string   `json:"device_name,omitempty"`
}

// wireSample mirrors Sample with a raw time field for lenient decoding.
type wireSample struct {
	Time       string   `json:"time"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	InZone     bool     `json:"in_zone"`
	ZoneName   *string  `json:"zone_name"`
	DeviceID   string   `json:"device_id"`
	DeviceName *string  `json:"device_name"`
}

// UnmarshalJSON decodes a sample, accepting RFC 3339 and zone-less ISO timestamps.
// Missing or null coordinates decode as zero and are excluded from the path.
func (s *Sample) UnmarshalJSON(data []byte) error {
	var w wireSample
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	ts, err := ParseTimestamp(w.Time)
	if err != nil {
		return err
	}

	*s = Sample{
		Time:       ts,
		InZone:     w.InZone,
		ZoneName:   w.ZoneName,
		DeviceID:   w.DeviceID,
		DeviceName: w.DeviceName,
	}
	if w.Latitude != nil {
		s.Latitude = *w.Latitude
	}
	if w.Longitude != nil {
		s.Longitude = *w.Longitude
	}
	return nil
}

// ParseTimestamp parses a sample timestamp in any of the accepted layouts.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("sample time is empty")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid sample time %q", value)
}

// HasCoordinates reports whether both coordinates are present.
// A zero coordinate counts as absent, matching how the location API encodes missing fixes.
func (s Sample) HasCoordinates() bool {
	return s.Latitude != 0 && s.Longitude != 0
}

// DeviceLabel returns the friendly device name, falling back to the device ID.
func (s Sample) DeviceLabel() string {
	if s.DeviceName != nil && *s.DeviceName != "" {
		return *s.DeviceName
	}
	return s.DeviceID
}

// ZoneLabel returns the zone name, or UnknownZoneLabel when not set.
func (s Sample) ZoneLabel() string {
	if s.ZoneName != nil && *s.ZoneName != "" {
		return *s.ZoneName
	}
	return UnknownZoneLabel
}

// LocationsResponse is the body returned by GET /api/locations.
// A missing locations field decodes as a nil series.
type LocationsResponse struct {
	Locations SampleSeries `json:"locations"`
}
