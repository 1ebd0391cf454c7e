// Find My History - Location History Playback Widget
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/findmyhistory

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/findmyhistory/internal/models"
)

// Breaker state reported when no circuit breaker wraps the fetcher.
const breakerDisabled = "disabled"

// HealthLive answers 200 while the process is running.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"alive":  true,
			"uptime": time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthReady answers 200 when the widget can serve data, and 503 while the
// upstream location API circuit is open.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	circuit := breakerDisabled
	if h.breaker != nil {
		circuit = h.breaker.State()
	}

	peers := 0
	if h.hub != nil {
		peers = h.hub.GetClientCount()
	}

	health := models.HealthStatus{
		Status:         "ready",
		Version:        h.version,
		Devices:        len(h.widget.Config().Devices),
		Samples:        h.widget.Series().Len(),
		Playing:        h.widget.Playing(),
		CircuitState:   circuit,
		WebSocketPeers: peers,
		Uptime:         time.Since(h.startTime).Seconds(),
	}

	statusCode := http.StatusOK
	if circuit == "open" {
		statusCode = http.StatusServiceUnavailable
		health.Status = "not_ready"
	}

	respondJSON(w, statusCode, &models.APIResponse{
		Status: "success",
		Data:   health,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
