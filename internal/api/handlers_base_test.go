// Find My History - Location History Playback Widget
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/findmyhistory

package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/findmyhistory/internal/config"
	"github.com/tomtom215/findmyhistory/internal/locations"
	"github.com/tomtom215/findmyhistory/internal/maprender"
	"github.com/tomtom215/findmyhistory/internal/models"
	"github.com/tomtom215/findmyhistory/internal/playback"
	"github.com/tomtom215/findmyhistory/internal/widget"
)

var (
	base = time.Date(2025, 1, 27, 10, 0, 0, 0, time.UTC)
	now  = base.Add(2 * time.Hour)
)

type fetchFunc func(ctx context.Context, q locations.Query) (models.SampleSeries, error)

func (f fetchFunc) Fetch(ctx context.Context, q locations.Query) (models.SampleSeries, error) {
	return f(ctx, q)
}

type stubBreaker string

func (s stubBreaker) State() string { return string(s) }

// seriesOf returns n samples spaced one minute apart.
func seriesOf(n int) models.SampleSeries {
	zone, name := "Home", "Alex's iPhone"
	s := make(models.SampleSeries, n)
	for i := range s {
		s[i] = models.Sample{
			Time:       base.Add(time.Duration(i) * time.Minute),
			Latitude:   54.9 + float64(i)*0.001,
			Longitude:  23.9,
			InZone:     i%2 == 0,
			ZoneName:   &zone,
			DeviceID:   "device_tracker.iphone",
			DeviceName: &name,
		}
	}
	return s
}

// newTestWidget returns a widget over a fixed series. It is loaded when
// devices are given.
func newTestWidget(t *testing.T, series models.SampleSeries, devices ...string) *widget.Widget {
	t.Helper()

	cfg := config.DefaultWidgetConfig()
	cfg.Devices = devices

	w, err := widget.New(widget.Options{
		Config: cfg,
		Fetcher: fetchFunc(func(context.Context, locations.Query) (models.SampleSeries, error) {
			return series, nil
		}),
		Scheduler: playback.NewManualScheduler(),
		Location:  time.UTC,
		Now:       func() time.Time { return now },
		Style: maprender.Style{
			TileURL:      "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
			Zoom:         13,
			PathColor:    "#3388ff",
			PathWeight:   3,
			PathOpacity:  0.7,
			InZoneColor:  "green",
			OutZoneColor: "red",
		},
	})
	if err != nil {
		t.Fatalf("widget.New() error = %v", err)
	}
	t.Cleanup(w.Close)

	if len(devices) > 0 {
		if err := w.Load(context.Background()); err != nil {
			t.Fatalf("Load() error = %v", err)
		}
	}
	return w
}

func unlimitedConfig() *ChiMiddlewareConfig {
	cfg := DefaultChiMiddlewareConfig()
	cfg.RateLimitDisabled = true
	return cfg
}

func newTestRouter(h *Handler) http.Handler {
	return NewRouter(h, unlimitedConfig()).SetupChi()
}

type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

func do(t *testing.T, handler http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s %s response: %v", method, path, err)
		}
	}
	return rec, env
}

func decodeUpdate(t *testing.T, env envelope) widget.Update {
	t.Helper()
	var u widget.Update
	if err := json.Unmarshal(env.Data, &u); err != nil {
		t.Fatalf("decode widget update: %v", err)
	}
	return u
}
