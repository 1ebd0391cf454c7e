// Find My History - Location History Playback Widget
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/findmyhistory

package api

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/tomtom215/findmyhistory/internal/logging"
	"github.com/tomtom215/findmyhistory/internal/view"
	"github.com/tomtom215/findmyhistory/web"
)

// staticPrefix is where the embedded assets are mounted.
const staticPrefix = "/static"

// Index renders the page with the widget's current state inlined, so the
// first paint needs no extra request.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	snap := h.widget.Snapshot()

	var buf bytes.Buffer
	err := view.RenderPage(&buf, view.PageData{
		View:         snap.View,
		Initial:      snap,
		StaticPrefix: staticPrefix,
		StatePath:    StatePath,
		CommandPath:  CommandPath,
		WSPath:       WSPath,
	})
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to render page")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := w.Write(buf.Bytes()); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Failed to write page")
	}
}

// Static serves the embedded assets. They are not fingerprinted, so the
// cache lifetime stays short.
func Static() http.Handler {
	files := http.StripPrefix(staticPrefix+"/", http.FileServerFS(web.Static()))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if strings.HasSuffix(path, ".js") || strings.HasSuffix(path, ".css") {
			w.Header().Set("Cache-Control", "public, max-age=3600")
		}
		files.ServeHTTP(w, r)
	})
}
