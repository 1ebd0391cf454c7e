// Find My History - Location History Playback Widget
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/findmyhistory

package config

import (
	"slices"
)

// Widget defaults, mirrored by the dashboard card's stub configuration.
const (
	DefaultTimeRange        = "24h"
	DefaultAPIURL           = "http://localhost:8080"
	DefaultHighlightUnknown = true
)

// WidgetConfig is the configuration surface the host dashboard hands the widget.
//
// HighlightUnknown is carried through to the view but is reserved: marker
// colour is decided by zone membership alone.
type WidgetConfig struct {
	Devices          []string `koanf:"devices" json:"devices"`
	DefaultTimeRange string   `koanf:"default_time_range" json:"default_time_range"`
	HighlightUnknown bool     `koanf:"highlight_unknown" json:"highlight_unknown"`
	APIURL           string   `koanf:"api_url" json:"api_url" validate:"required,httpurl"`
}

// DefaultWidgetConfig returns the widget stub configuration.
func DefaultWidgetConfig() WidgetConfig {
	return WidgetConfig{
		Devices:          []string{},
		DefaultTimeRange: DefaultTimeRange,
		HighlightUnknown: DefaultHighlightUnknown,
		APIURL:           DefaultAPIURL,
	}
}

// WidgetOptions is a partial widget configuration as supplied by a user.
// A nil field means "not specified" and keeps the value it is merged over.
type WidgetOptions struct {
	Devices          *[]string `json:"devices,omitempty" yaml:"devices"`
	DefaultTimeRange *string   `json:"default_time_range,omitempty" yaml:"default_time_range"`
	HighlightUnknown *bool     `json:"highlight_unknown,omitempty" yaml:"highlight_unknown"`
	APIURL           *string   `json:"api_url,omitempty" yaml:"api_url"`
}

// Merge returns a copy of c with every specified option applied.
// Specified keys override; unspecified keys keep c's values. Only an
// explicitly supplied empty string for APIURL is treated as unspecified,
// since the widget cannot address an empty base URL.
func (c WidgetConfig) Merge(opts WidgetOptions) WidgetConfig {
	merged := c.Clone()

	if opts.Devices != nil {
		merged.Devices = slices.Clone(*opts.Devices)
		if merged.Devices == nil {
			merged.Devices = []string{}
		}
	}
	if opts.DefaultTimeRange != nil {
		merged.DefaultTimeRange = *opts.DefaultTimeRange
	}
	if opts.HighlightUnknown != nil {
		merged.HighlightUnknown = *opts.HighlightUnknown
	}
	if opts.APIURL != nil && *opts.APIURL != "" {
		merged.APIURL = *opts.APIURL
	}
	return merged
}

// Clone returns a deep copy.
func (c WidgetConfig) Clone() WidgetConfig {
	out := c
	out.Devices = slices.Clone(c.Devices)
	if out.Devices == nil {
		out.Devices = []string{}
	}
	return out
}

// TimeRange returns the configured range string, or DefaultTimeRange when empty.
func (c WidgetConfig) TimeRange() string {
	if c.DefaultTimeRange == "" {
		return DefaultTimeRange
	}
	return c.DefaultTimeRange
}

// BaseURL returns the configured API URL, or DefaultAPIURL when empty.
func (c WidgetConfig) BaseURL() string {
	if c.APIURL == "" {
		return DefaultAPIURL
	}
	return c.APIURL
}

// HasDevice reports whether id is one of the configured devices.
func (c WidgetConfig) HasDevice(id string) bool {
	return slices.Contains(c.Devices, id)
}
