// Find My History - Location History Playback Widget
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/findmyhistory

// Package maprender turns the loaded series and the current playback time
// into a Scene: a map-library-neutral description of what the browser map
// should show. The browser applies a Scene with Leaflet; this package never
// touches a map surface itself.
package maprender

// LatLng is a [latitude, longitude] pair.
type LatLng [2]float64

// Scene is one complete redraw. Path and Marker replace whatever the
// previous scene drew in their layers; a nil layer means "cleared".
type Scene struct {
	// Create is set only on the first draw. The client creates the map
	// surface and its tile layer from it.
	Create *MapInit `json:"create,omitempty"`

	// View is where the map is centred after drawing.
	View MapView `json:"view"`

	Path   *Polyline `json:"path"`
	Marker *Marker   `json:"marker"`
}

// MapInit describes the lazily created map surface.
type MapInit struct {
	Center      LatLng `json:"center"`
	Zoom        int    `json:"zoom"`
	TileURL     string `json:"tile_url"`
	Attribution string `json:"attribution"`
}

// MapView is a centre and zoom level.
type MapView struct {
	Center LatLng `json:"center"`
	Zoom   int    `json:"zoom"`
}

// Polyline is the path layer.
type Polyline struct {
	Coords  []LatLng `json:"coords"`
	Color   string   `json:"color"`
	Weight  int      `json:"weight"`
	Opacity float64  `json:"opacity"`
}

// Marker is the current-position layer.
type Marker struct {
	Position LatLng `json:"position"`
	Color    string `json:"color"`
	InZone   bool   `json:"in_zone"`

	// Popup is ready-to-bind HTML; the fields below carry the same content
	// for clients that build their own popup.
	Popup    string `json:"popup"`
	Label    string `json:"label"`
	Time     string `json:"time"`
	Zone     string `json:"zone"`
	Location string `json:"location"`
}
