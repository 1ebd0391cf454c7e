// Find My History - Location History Playback Widget
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/findmyhistory

package services

import (
	"context"
	"errors"

	"github.com/tomtom215/findmyhistory/internal/logging"
	"github.com/tomtom215/findmyhistory/internal/widget"
)

// Refresher is the widget surface the loader drives.
type Refresher interface {
	Refresh(ctx context.Context) error
	Close()
}

// WidgetService performs the initial load when the widget is first attached
// and stops playback on shutdown.
//
// Refresh only fetches while the series is empty, so a restart after a
// successful load does not refetch. A failed load is shown by the widget
// itself and is not a service failure.
type WidgetService struct {
	widget Refresher
	name   string
}

// NewWidgetService wraps w.
func NewWidgetService(w Refresher) *WidgetService {
	return &WidgetService{widget: w, name: "widget-loader"}
}

// Serve implements suture.Service.
func (s *WidgetService) Serve(ctx context.Context) error {
	logger := logging.WithComponent(s.name)

	err := s.widget.Refresh(ctx)
	switch {
	case err == nil:
	case errors.Is(err, widget.ErrNoDevices):
		logger.Warn().Msg("No devices configured; set widget.devices or WIDGET_DEVICES")
	case errors.Is(err, context.Canceled):
		return ctx.Err()
	default:
		logger.Warn().Err(err).Msg("Initial load failed")
	}

	<-ctx.Done()
	s.widget.Close()
	return ctx.Err()
}

func (s *WidgetService) String() string {
	return s.name
}
