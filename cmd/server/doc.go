// Find My History - Location History Playback Widget
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/findmyhistory

/*
Package main is the entry point for the Find My History server.

The server hosts one HistoryWidget: a map card that replays a tracked
device's recorded positions over a recent time window. The widget state,
playback clock and map scene live in this process; the browser page is a
thin Leaflet client that renders what the server pushes over a websocket.

# Application Architecture

	RootSupervisor ("findmyhistory")
	├── WidgetSupervisor ("widget-layer")
	│   ├── Widget loader (initial fetch, stops playback on shutdown)
	│   └── Config watcher (optional, when a config file is found)
	├── MessagingSupervisor ("messaging-layer")
	│   └── WebSocket Hub (widget updates and client commands)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (page, REST commands, health, metrics)

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config.yaml and environment
 2. Logging: zerolog with JSON/console output modes
 3. Location client: HTTP fetcher, optionally behind a gobreaker circuit breaker
 4. Widget: playback controller and map renderer
 5. WebSocket Hub: fans widget updates out to every open page
 6. HTTP Server: Chi router with middleware stack
 7. Supervisor Tree: Suture v4 process supervision

# Configuration

	WIDGET_DEVICES=device_tracker.iphone,device_tracker.ipad
	WIDGET_DEFAULT_TIME_RANGE=7d
	WIDGET_API_URL=http://homeassistant.local:8123
	HTTP_PORT=8080

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains
in-flight requests, the hub closes every client and playback stops.
*/
package main
