// Find My History - Location History Playback Widget
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/findmyhistory

/*
Package middleware provides the HTTP middleware shared by the widget server.

  - RequestID: assigns or propagates X-Request-ID and seeds the logging context
  - PrometheusMetrics: request count, latency and in-flight gauge, labelled by
    chi route pattern
  - Compression: gzip for text responses (page, JSON, static assets)

All three use the http.HandlerFunc shape; the api package adapts them to
chi's func(http.Handler) http.Handler with a small wrapper:

	r.Use(chiMiddleware(middleware.PrometheusMetrics))

PrometheusMetrics forwards http.Hijacker so it can sit in front of the
websocket endpoint.
*/
package middleware
