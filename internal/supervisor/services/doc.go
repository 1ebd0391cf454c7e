// Find My History - Location History Playback Widget
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/findmyhistory

// Package services adapts the widget host's long-running components to
// suture.Service: the HTTP server, the websocket hub, the widget's initial
// load and the config file watcher. Each service returns ctx.Err() on a
// graceful stop and a wrapped error when it should be restarted.
package services
