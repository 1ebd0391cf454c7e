// Find My History - Location History Playback Widget
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/findmyhistory

package api

import (
	"context"
	"time"

	"github.com/tomtom215/findmyhistory/internal/config"
	"github.com/tomtom215/findmyhistory/internal/models"
	ws "github.com/tomtom215/findmyhistory/internal/websocket"
	"github.com/tomtom215/findmyhistory/internal/widget"
)

// Paths the page hands to the browser script.
const (
	StatePath   = "/api/v1/widget"
	CommandPath = "/api/v1/widget"
	WSPath      = "/api/v1/ws"
)

// Widget is the widget surface the handlers drive.
type Widget interface {
	Execute(ctx context.Context, source string, cmd widget.Command) error
	Reconfigure(ctx context.Context, opts config.WidgetOptions) error
	Snapshot() widget.Update
	Config() config.WidgetConfig
	Series() models.SampleSeries
	Playing() bool
}

// BreakerStater reports the upstream circuit breaker state.
type BreakerStater interface {
	State() string
}

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	Widget Widget

	// Hub serves websocket clients. When nil the ws endpoint answers 503.
	Hub *ws.Hub

	// Breaker is reported by the readiness probe. Nil reports "disabled".
	Breaker BreakerStater

	// CORSOrigins are the cross-origin pages allowed to open a websocket.
	// Same-origin pages are always allowed.
	CORSOrigins []string

	Version string
}

// Handler serves the widget page and its API.
type Handler struct {
	widget      Widget
	hub         *ws.Hub
	breaker     BreakerStater
	corsOrigins []string
	version     string
	startTime   time.Time
}

// NewHandler creates a Handler.
func NewHandler(opts HandlerOptions) *Handler {
	version := opts.Version
	if version == "" {
		version = "dev"
	}
	return &Handler{
		widget:      opts.Widget,
		hub:         opts.Hub,
		breaker:     opts.Breaker,
		corsOrigins: opts.CORSOrigins,
		version:     version,
		startTime:   time.Now(),
	}
}
