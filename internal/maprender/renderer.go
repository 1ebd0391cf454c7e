// Find My History - Location History Playback Widget
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/findmyhistory

package maprender

import (
	"fmt"
	"html"
	"time"

	"github.com/tomtom215/findmyhistory/internal/config"
	"github.com/tomtom215/findmyhistory/internal/models"
)

// DisplayTimeLayout is used for every human-readable timestamp.
const DisplayTimeLayout = "2006-01-02 15:04:05"

// Style holds the visual parameters of a scene.
type Style struct {
	TileURL      string
	Attribution  string
	Zoom         int
	PathColor    string
	PathWeight   int
	PathOpacity  float64
	InZoneColor  string
	OutZoneColor string
}

// StyleFromConfig converts map configuration into a Style.
func StyleFromConfig(cfg config.MapConfig) Style {
	return Style(cfg)
}

// Renderer produces scenes. It remembers whether the map surface has been
// created so that only the first scene carries Create.
type Renderer struct {
	style    Style
	location *time.Location
	created  bool
}

// NewRenderer returns a renderer formatting times in loc (time.Local when nil).
func NewRenderer(style Style, loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.Local
	}
	return &Renderer{style: style, location: loc}
}

// Created reports whether a scene with Create has been produced.
func (r *Renderer) Created() bool {
	return r.created
}

// Reset forgets the map surface. The next Draw creates it again; used when
// a panel replaced the map container.
func (r *Renderer) Reset() {
	r.created = false
}

// Location returns the display time zone.
func (r *Renderer) Location() *time.Location {
	return r.location
}

// FormatTime renders t for display.
func (r *Renderer) FormatTime(t time.Time) string {
	return t.In(r.location).Format(DisplayTimeLayout)
}

// Draw renders series at current. ok is false, and nothing is drawn, when
// the series is empty.
func (r *Renderer) Draw(series models.SampleSeries, current time.Time) (Scene, bool) {
	sample, ok := series.Nearest(current)
	if !ok {
		return Scene{}, false
	}

	center := LatLng{sample.Latitude, sample.Longitude}
	scene := Scene{
		View:   MapView{Center: center, Zoom: r.style.Zoom},
		Path:   r.path(series),
		Marker: r.marker(sample),
	}

	if !r.created {
		r.created = true
		scene.Create = &MapInit{
			Center:      center,
			Zoom:        r.style.Zoom,
			TileURL:     r.style.TileURL,
			Attribution: r.style.Attribution,
		}
	}
	return scene, true
}

// Peek renders like Draw without marking the map as created. Used to hand a
// full scene to clients that join after the first draw.
func (r *Renderer) Peek(series models.SampleSeries, current time.Time) (Scene, bool) {
	created := r.created
	scene, ok := r.Draw(series, current)
	r.created = created
	if ok && scene.Create == nil {
		scene.Create = &MapInit{
			Center:      scene.View.Center,
			Zoom:        r.style.Zoom,
			TileURL:     r.style.TileURL,
			Attribution: r.style.Attribution,
		}
	}
	return scene, ok
}

// path returns nil when fewer than two samples have coordinates.
func (r *Renderer) path(series models.SampleSeries) *Polyline {
	points := series.Path()
	if len(points) < 2 {
		return nil
	}
	coords := make([]LatLng, len(points))
	for i, p := range points {
		coords[i] = LatLng(p)
	}
	return &Polyline{
		Coords:  coords,
		Color:   r.style.PathColor,
		Weight:  r.style.PathWeight,
		Opacity: r.style.PathOpacity,
	}
}

func (r *Renderer) marker(s models.Sample) *Marker {
	color := r.style.OutZoneColor
	if s.InZone {
		color = r.style.InZoneColor
	}

	label := s.DeviceLabel()
	ts := r.FormatTime(s.Time)
	zone := s.ZoneLabel()
	loc := fmt.Sprintf("%.4f, %.4f", s.Latitude, s.Longitude)

	popup := fmt.Sprintf("<strong>%s</strong><br>Time: %s<br>Zone: %s<br>Location: %s",
		html.EscapeString(label), ts, html.EscapeString(zone), loc)

	return &Marker{
		Position: LatLng{s.Latitude, s.Longitude},
		Color:    color,
		InZone:   s.InZone,
		Popup:    popup,
		Label:    label,
		Time:     ts,
		Zone:     zone,
		Location: loc,
	}
}
