// Find My History - Location History Playback Widget
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/findmyhistory

package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/page.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html.tmpl"))

// Leaflet release loaded by the page.
const (
	LeafletCSS = "https://unpkg.com/leaflet@1.9.4/dist/leaflet.css"
	LeafletJS  = "https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"
)

// PageData is the input of the page template.
type PageData struct {
	View ViewModel

	// Initial is serialized into the page so the client can draw the map
	// before its websocket connects.
	Initial any

	StaticPrefix string
	StatePath    string
	CommandPath  string
	WSPath       string
}

// RenderPage writes the full HTML page for data.
func RenderPage(w io.Writer, data PageData) error {
	if data.StaticPrefix == "" {
		data.StaticPrefix = "/static"
	}
	if err := pageTemplate.ExecuteTemplate(w, "page.html.tmpl", pageContext{PageData: data, LeafletCSS: LeafletCSS, LeafletJS: LeafletJS}); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

type pageContext struct {
	PageData
	LeafletCSS string
	LeafletJS  string
}
