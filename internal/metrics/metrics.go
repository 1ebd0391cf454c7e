// Find My History - Location History Playback Widget
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/findmyhistory

// Package metrics holds the Prometheus collectors for the widget host:
// upstream location fetches, widget loads, playback, websocket clients,
// HTTP requests and the upstream circuit breaker.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Load outcomes recorded by RecordLoad.
const (
	LoadOutcomeOK    = "ok"
	LoadOutcomeEmpty = "empty"
	LoadOutcomeError = "error"
)

var (
	// Upstream location API
	LocationFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "location_fetch_duration_seconds",
			Help:    "Duration of GET /api/locations requests against the upstream API",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"result"}, // "success", "error"
	)

	LocationFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "location_fetch_errors_total",
			Help: "Total number of failed upstream location fetches",
		},
		[]string{"error_type"}, // "status", "decode", "transport", "canceled", "circuit_open"
	)

	// Widget loads
	WidgetLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "widget_loads_total",
			Help: "Total number of completed widget data loads by outcome",
		},
		[]string{"outcome"},
	)

	WidgetSamplesLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "widget_samples_loaded",
			Help: "Number of samples in the currently loaded series",
		},
	)

	WidgetStaleResponsesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "widget_stale_responses_dropped_total",
			Help: "Load responses discarded because a newer load was started",
		},
	)

	WidgetCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "widget_commands_total",
			Help: "Total number of widget control commands",
		},
		[]string{"action", "source"}, // source: "http", "websocket", "config"
	)

	// Playback
	PlaybackTicksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "playback_ticks_total",
			Help: "Total number of playback clock ticks",
		},
	)

	PlaybackAutoPausesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "playback_auto_pauses_total",
			Help: "Number of times playback stopped on reaching the last sample",
		},
	)

	PlaybackPlaying = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "playback_playing",
			Help: "1 while playback is running, 0 when stopped",
		},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of API requests currently being processed",
		},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections_active",
			Help: "Number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages queued to clients",
		},
		[]string{"message_type"},
	)

	WSCommandsThrottled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_commands_throttled_total",
			Help: "Inbound WebSocket commands rejected by the per-client rate limiter",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordLocationFetch records one upstream fetch. errorType is "" on success.
func RecordLocationFetch(duration time.Duration, errorType string) {
	result := "success"
	if errorType != "" {
		result = "error"
		LocationFetchErrors.WithLabelValues(errorType).Inc()
	}
	LocationFetchDuration.WithLabelValues(result).Observe(duration.Seconds())
}

// RecordLoad records a completed (non-stale) widget load.
func RecordLoad(outcome string, samples int) {
	WidgetLoadsTotal.WithLabelValues(outcome).Inc()
	if outcome != LoadOutcomeError {
		WidgetSamplesLoaded.Set(float64(samples))
	}
}

// RecordStaleResponse counts a discarded load response.
func RecordStaleResponse() {
	WidgetStaleResponsesDropped.Inc()
}

// RecordCommand counts a widget control command.
func RecordCommand(action, source string) {
	WidgetCommandsTotal.WithLabelValues(action, source).Inc()
}

// RecordPlaybackTick counts a tick and, when it ended playback, an auto-pause.
func RecordPlaybackTick(autoPaused bool) {
	PlaybackTicksTotal.Inc()
	if autoPaused {
		PlaybackAutoPausesTotal.Inc()
	}
}

// SetPlaying updates the playback state gauge.
func SetPlaying(playing bool) {
	if playing {
		PlaybackPlaying.Set(1)
		return
	}
	PlaybackPlaying.Set(0)
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
