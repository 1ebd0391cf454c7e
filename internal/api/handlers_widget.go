// Find My History - Location History Playback Widget
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/findmyhistory

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/findmyhistory/internal/config"
	"github.com/tomtom215/findmyhistory/internal/logging"
	"github.com/tomtom215/findmyhistory/internal/models"
	"github.com/tomtom215/findmyhistory/internal/playback"
	"github.com/tomtom215/findmyhistory/internal/validation"
	"github.com/tomtom215/findmyhistory/internal/widget"
)

// commandActions are the actions exposed as POST /api/v1/widget/{action}.
var commandActions = []string{
	widget.ActionPlay,
	widget.ActionPause,
	widget.ActionToggle,
	widget.ActionScrub,
	widget.ActionSpeed,
	widget.ActionDevice,
	widget.ActionReload,
}

// WidgetState returns the current view model and a full map scene.
func (h *Handler) WidgetState(w http.ResponseWriter, r *http.Request) {
	snap := h.widget.Snapshot()
	respondSuccess(w, snap, snap.Version)
}

// WidgetCommand returns the handler for one command action. The body carries
// the action's argument ({"device": ...}, {"position": ...}, {"speed": ...});
// the action itself comes from the route.
func (h *Handler) WidgetCommand(action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cmd widget.Command
		if err := decodeJSONBody(w, r, &cmd); err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Request body must be JSON", nil)
			return
		}
		cmd.Action = action

		if err := h.widget.Execute(r.Context(), widget.SourceHTTP, cmd); err != nil {
			h.respondCommandError(w, r, cmd, err)
			return
		}

		snap := h.widget.Snapshot()
		respondSuccess(w, snap, snap.Version)
	}
}

// WidgetConfigure merges a partial widget configuration over the active one
// and reloads. Keys left out of the body keep their current values.
func (h *Handler) WidgetConfigure(w http.ResponseWriter, r *http.Request) {
	var opts config.WidgetOptions
	if err := decodeJSONBody(w, r, &opts); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Request body must be JSON", nil)
		return
	}

	err := h.widget.Reconfigure(r.Context(), opts)
	var verr *validation.RequestValidationError
	if errors.As(err, &verr) {
		respondValidationError(w, verr)
		return
	}
	// Load failures after a valid change are shown by the widget's view.
	if err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("reload after reconfigure failed")
	}

	snap := h.widget.Snapshot()
	respondSuccess(w, snap, snap.Version)
}

func (h *Handler) respondCommandError(w http.ResponseWriter, r *http.Request, cmd widget.Command, err error) {
	var verr *validation.RequestValidationError
	switch {
	case errors.As(err, &verr):
		respondValidationError(w, verr)
	case errors.Is(err, widget.ErrNotFound):
		respondAPIError(w, http.StatusNotFound, &models.APIError{
			Code:    "DEVICE_NOT_FOUND",
			Message: "Device is not configured",
			Details: map[string]interface{}{"device": cmd.Device},
		})
	case errors.Is(err, playback.ErrNoSamples):
		respondError(w, http.StatusConflict, "NO_DATA", "No location data loaded", nil)
	case errors.Is(err, playback.ErrInvalidSpeed):
		respondError(w, http.StatusBadRequest, validation.ErrorCode, err.Error(), nil)
	default:
		logging.Ctx(r.Context()).Error().Err(err).Str("action", cmd.Action).Msg("widget command failed")
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Command failed", nil)
	}
}
