// Find My History - Location History Playback Widget
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/findmyhistory

// Package locations fetches a device's location history from the upstream
// location API (GET /api/locations).
package locations

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/findmyhistory/internal/config"
	"github.com/tomtom215/findmyhistory/internal/logging"
	"github.com/tomtom215/findmyhistory/internal/metrics"
	"github.com/tomtom215/findmyhistory/internal/models"
	"github.com/tomtom215/findmyhistory/internal/timerange"
)

// DefaultLimit is the sample cap sent with every request.
const DefaultLimit = 10000

// timestampLayout renders instants as UTC with millisecond precision,
// e.g. 2025-01-27T12:00:00.000Z.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// maxErrorBodySize bounds how much of a failed response is drained for logging.
const maxErrorBodySize = 4 * 1024

// Query identifies one history request.
type Query struct {
	BaseURL  string
	DeviceID string
	Window   timerange.Window
}

// Fetcher loads a device's samples for a window. Implementations must honor
// ctx cancellation.
type Fetcher interface {
	Fetch(ctx context.Context, q Query) (models.SampleSeries, error)
}

// StatusError is returned for non-2xx upstream responses.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return "API error: " + strconv.Itoa(e.StatusCode)
}

// Client is the HTTP Fetcher.
type Client struct {
	httpClient *http.Client
	limit      int
}

// NewClient creates a client using the upstream timeout and limit.
func NewClient(cfg config.UpstreamConfig) *Client {
	limit := cfg.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limit:      limit,
	}
}

// NewClientWithHTTP lets tests and callers supply the transport.
func NewClientWithHTTP(httpClient *http.Client, limit int) *Client {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Client{httpClient: httpClient, limit: limit}
}

// BuildURL returns the request URL for q:
//
//	<base>/api/locations?device_id=<id>&start=<ISO>&end=<ISO>&limit=<n>
func BuildURL(q Query, limit int) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(q.BaseURL, "/"))
	b.WriteString("/api/locations?device_id=")
	b.WriteString(url.QueryEscape(q.DeviceID))
	b.WriteString("&start=")
	b.WriteString(url.QueryEscape(FormatTimestamp(q.Window.Start)))
	b.WriteString("&end=")
	b.WriteString(url.QueryEscape(FormatTimestamp(q.Window.End)))
	b.WriteString("&limit=")
	b.WriteString(strconv.Itoa(limit))
	return b.String()
}

// FormatTimestamp renders t the way the upstream API expects.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// Fetch performs one GET and decodes the "locations" array. A missing array
// decodes as an empty series.
func (c *Client) Fetch(ctx context.Context, q Query) (models.SampleSeries, error) {
	start := time.Now()
	series, err := c.fetch(ctx, q)
	metrics.RecordLocationFetch(time.Since(start), errorType(err))
	return series, err
}

func (c *Client) fetch(ctx context.Context, q Query) (models.SampleSeries, error) {
	reqURL := BuildURL(q, c.limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	logging.Ctx(ctx).Debug().
		Str("device", q.DeviceID).
		Time("start", q.Window.Start).
		Time("end", q.Window.End).
		Msg("Fetching location history")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch locations: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		logging.Ctx(ctx).Warn().
			Int("status", resp.StatusCode).
			Str("device", q.DeviceID).
			Str("body", string(body)).
			Msg("Location API returned error status")
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	var payload models.LocationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode locations response: %w", err)
	}
	if payload.Locations == nil {
		payload.Locations = models.SampleSeries{}
	}
	return payload.Locations, nil
}

// errorType classifies err for metrics; "" means success.
func errorType(err error) string {
	var statusErr *StatusError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &statusErr):
		return "status"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case strings.HasPrefix(err.Error(), "decode"):
		return "decode"
	default:
		return "transport"
	}
}
