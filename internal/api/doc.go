// Find My History - Location History Playback Widget
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/findmyhistory

/*
Package api provides the HTTP surface of the widget host using the Chi router.

Routes:

	GET  /                        HTML page with the widget mounted
	GET  /static/*                embedded widget.js and widget.css
	GET  /api/v1/widget           current view model and map scene
	POST /api/v1/widget/{action}  play, pause, toggle, scrub, speed, device, reload
	POST /api/v1/widget/config    partial widget config merged over the active one
	GET  /api/v1/ws               websocket: widget_update push, command input
	GET  /api/v1/health/live      liveness probe
	GET  /api/v1/health/ready     readiness probe (503 while the upstream circuit is open)
	GET  /metrics                 Prometheus exposition

Every JSON endpoint answers with the models.APIResponse envelope. Command
endpoints answer with the widget state after the command was applied, so a
client without a websocket can still render every change it causes.

Error codes:

	VALIDATION_ERROR     400  malformed or out-of-range command fields
	INVALID_REQUEST      400  body is not JSON
	DEVICE_NOT_FOUND     404  device is not in the configured list
	NO_DATA              409  playback requested with no samples loaded
	SERVICE_UNAVAILABLE  503  websocket hub not running
	INTERNAL_ERROR       500  anything else

Middleware order (global): request ID, real IP, panic recovery, CORS. API
groups add httprate limiting, security headers and Prometheus metrics; the
page and JSON state endpoints add gzip compression.
*/
package api
