// Find My History - Location History Playback Widget
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/findmyhistory

package locations

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/findmyhistory/internal/timerange"
)

var windowEnd = time.Date(2025, 1, 27, 12, 0, 0, 0, time.UTC)

const sampleBody = `{"locations":[
	{"time":"2025-01-27T10:00:00Z","latitude":54.8985,"longitude":23.9036,"in_zone":true,"zone_name":"home"},
	{"time":"2025-01-27T11:00:00Z","latitude":54.9,"longitude":23.91,"in_zone":false}
]}`

func TestBuildURL(t *testing.T) {
	t.Parallel()

	q := Query{
		BaseURL:  "http://localhost:8080/",
		DeviceID: "device_tracker.iphone",
		Window:   timerange.WindowEnding(windowEnd, "24h"),
	}

	got := BuildURL(q, DefaultLimit)
	want := "http://localhost:8080/api/locations?device_id=device_tracker.iphone" +
		"&start=2025-01-26T12%3A00%3A00.000Z&end=2025-01-27T12%3A00%3A00.000Z&limit=10000"
	if got != want {
		t.Errorf("BuildURL() =\n %s\nwant\n %s", got, want)
	}
}

func TestFetch_RequestShape(t *testing.T) {
	t.Parallel()

	var captured url.Values
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		captured = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleBody))
	}))
	defer srv.Close()

	c := NewClientWithHTTP(srv.Client(), 0)
	series, err := c.Fetch(context.Background(), Query{
		BaseURL:  srv.URL,
		DeviceID: "device_tracker.iphone",
		Window:   timerange.WindowEnding(windowEnd, "7d"),
	})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if series.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", series.Len())
	}

	if path != "/api/locations" {
		t.Errorf("path = %q", path)
	}
	if captured.Get("device_id") != "device_tracker.iphone" {
		t.Errorf("device_id = %q", captured.Get("device_id"))
	}
	if captured.Get("limit") != "10000" {
		t.Errorf("limit = %q", captured.Get("limit"))
	}

	start, err := time.Parse(time.RFC3339, captured.Get("start"))
	if err != nil {
		t.Fatalf("start not ISO: %v", err)
	}
	end, err := time.Parse(time.RFC3339, captured.Get("end"))
	if err != nil {
		t.Fatalf("end not ISO: %v", err)
	}
	if d := end.Sub(start); d != 168*time.Hour {
		t.Errorf("end-start = %v, want 168h", d)
	}
}

func TestFetch_StatusError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClientWithHTTP(srv.Client(), DefaultLimit)
	_, err := c.Fetch(context.Background(), Query{BaseURL: srv.URL, DeviceID: "d", Window: timerange.WindowEnding(windowEnd, "1h")})

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Fetch() error = %v, want *StatusError", err)
	}
	if statusErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d", statusErr.StatusCode)
	}
	if err.Error() != "API error: 500" {
		t.Errorf("Error() = %q, want %q", err.Error(), "API error: 500")
	}
}

func TestFetch_EmptyAndMissingArray(t *testing.T) {
	t.Parallel()

	for _, body := range []string{`{"locations":[]}`, `{}`} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(body))
		}))

		c := NewClientWithHTTP(srv.Client(), DefaultLimit)
		series, err := c.Fetch(context.Background(), Query{BaseURL: srv.URL, DeviceID: "d"})
		srv.Close()

		if err != nil {
			t.Fatalf("body %s: Fetch() error = %v", body, err)
		}
		if series == nil || !series.IsEmpty() {
			t.Errorf("body %s: expected empty non-nil series, got %v", body, series)
		}
	}
}

func TestFetch_DecodeError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	c := NewClientWithHTTP(srv.Client(), DefaultLimit)
	_, err := c.Fetch(context.Background(), Query{BaseURL: srv.URL, DeviceID: "d"})
	if err == nil || !strings.HasPrefix(err.Error(), "decode") {
		t.Errorf("Fetch() error = %v, want decode error", err)
	}
	if errorType(err) != "decode" {
		t.Errorf("errorType() = %q, want decode", errorType(err))
	}
}

func TestFetch_Canceled(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClientWithHTTP(srv.Client(), DefaultLimit)
	_, err := c.Fetch(ctx, Query{BaseURL: srv.URL, DeviceID: "d"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Fetch() error = %v, want context.Canceled", err)
	}
}

func TestErrorType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&StatusError{StatusCode: 404}, "status"},
		{context.Canceled, "canceled"},
		{errors.New("fetch locations: dial tcp: connection refused"), "transport"},
	}
	for _, tt := range tests {
		if got := errorType(tt.err); got != tt.want {
			t.Errorf("errorType(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
