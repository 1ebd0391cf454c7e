// Find My History - Location History Playback Widget
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/findmyhistory

// Package view turns widget state into a view description.
//
// Render is a pure function: it reads a State snapshot and returns a
// ViewModel without touching the widget. The HTTP layer serves the
// ViewModel as JSON to live clients and renders it once into the page
// template for the first paint.
package view

import (
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/findmyhistory/internal/models"
)

// Title is the card header text.
const Title = "Find My Location History"

// Icons used by the card.
const (
	IconPlay    = "mdi:play"
	IconPause   = "mdi:pause"
	IconError   = "mdi:alert-circle"
	IconMessage = "mdi:information"
)

// Slider bounds. The slider reports a normalized position across the span.
const (
	SliderMin  = 0.0
	SliderMax  = 1.0
	SliderStep = 0.001
)

// Status selects what the content area shows.
type Status int

const (
	// StatusReady shows the controls and map.
	StatusReady Status = iota
	// StatusError replaces the content with an error panel.
	StatusError
	// StatusMessage replaces the content with an informational panel.
	StatusMessage
)

// String returns the lowercase status name used on the wire.
func (s Status) String() string {
	switch s {
	case StatusError:
		return "error"
	case StatusMessage:
		return "message"
	default:
		return "ready"
	}
}

// State is the read-only snapshot Render works from.
type State struct {
	Devices          []string
	SelectedDevice   string
	HighlightUnknown bool

	Status     Status
	StatusText string

	Playing    bool
	Speed      float64
	Current    time.Time
	HasCurrent bool
	Position   float64

	Stats models.SeriesStats

	// FormatTime renders timestamps for display; nil uses time.Local.
	FormatTime func(time.Time) string
}

// ViewModel is the rendered card.
type ViewModel struct {
	Title            string    `json:"title"`
	Status           string    `json:"status"`
	Panel            *Panel    `json:"panel,omitempty"`
	Controls         *Controls `json:"controls,omitempty"`
	HighlightUnknown bool      `json:"highlight_unknown"`
}

// Panel is the single-message content shown for the error and message states.
// Both states share a structure and differ only in class and icon.
type Panel struct {
	Class string `json:"class"`
	Icon  string `json:"icon"`
	Text  string `json:"text"`
}

// Controls are the map controls shown in the ready state.
type Controls struct {
	Devices     []DeviceOption `json:"devices"`
	PlayPause   Button         `json:"play_pause"`
	Slider      Slider         `json:"slider"`
	Speed       float64        `json:"speed"`
	TimeDisplay string         `json:"time_display"`
	Stats       []StatLine     `json:"stats"`
}

// DeviceOption is one entry of the device selector.
type DeviceOption struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// Button is the play/pause toggle.
type Button struct {
	Icon    string `json:"icon"`
	Action  string `json:"action"`
	Playing bool   `json:"playing"`
}

// Slider is the scrub control.
type Slider struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Step  float64 `json:"step"`
	Value float64 `json:"value"`
}

// StatLine is one label/value pair of the stats area.
type StatLine struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Render builds the ViewModel for s.
func Render(s State) ViewModel {
	vm := ViewModel{
		Title:            Title,
		Status:           s.Status.String(),
		HighlightUnknown: s.HighlightUnknown,
	}

	switch s.Status {
	case StatusError:
		vm.Panel = &Panel{Class: "error", Icon: IconError, Text: s.StatusText}
		return vm
	case StatusMessage:
		vm.Panel = &Panel{Class: "message", Icon: IconMessage, Text: s.StatusText}
		return vm
	}

	format := s.FormatTime
	if format == nil {
		format = func(t time.Time) string { return t.Local().Format(time.DateTime) }
	}

	controls := &Controls{
		Devices:   deviceOptions(s.Devices, s.SelectedDevice),
		PlayPause: playPause(s.Playing),
		Slider: Slider{
			Min:   SliderMin,
			Max:   SliderMax,
			Step:  SliderStep,
			Value: clampPosition(s.Position),
		},
		Speed: s.Speed,
		Stats: statLines(s.Stats, format),
	}
	if s.HasCurrent {
		controls.TimeDisplay = format(s.Current)
	}
	vm.Controls = controls
	return vm
}

func deviceOptions(devices []string, selected string) []DeviceOption {
	opts := make([]DeviceOption, len(devices))
	for i, d := range devices {
		opts[i] = DeviceOption{Value: d, Label: d, Selected: d == selected}
	}
	return opts
}

func playPause(playing bool) Button {
	if playing {
		return Button{Icon: IconPause, Action: "pause", Playing: true}
	}
	return Button{Icon: IconPlay, Action: "play"}
}

func clampPosition(p float64) float64 {
	if math.IsNaN(p) || p > SliderMax {
		return SliderMax
	}
	if p < SliderMin {
		return SliderMin
	}
	return p
}

func statLines(stats models.SeriesStats, format func(time.Time) string) []StatLine {
	if stats.TotalLocations == 0 {
		return nil
	}
	lines := []StatLine{
		{Label: "Points", Value: fmt.Sprintf("%d", stats.TotalLocations)},
		{Label: "In zone", Value: fmt.Sprintf("%d", stats.InZoneCount)},
		{Label: "Away", Value: fmt.Sprintf("%d", stats.OutOfZoneCount)},
	}
	if stats.First != nil && stats.Last != nil {
		lines = append(lines,
			StatLine{Label: "From", Value: format(*stats.First)},
			StatLine{Label: "To", Value: format(*stats.Last)},
		)
	}
	lines = append(lines, StatLine{Label: "Span", Value: FormatSpan(stats.Duration)})
	return lines
}

// FormatSpan renders d as "2d 3h 4m", dropping leading zero units.
func FormatSpan(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	days := int(d / (24 * time.Hour))
	hours := int(d % (24 * time.Hour) / time.Hour)
	minutes := int(d % time.Hour / time.Minute)

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}
