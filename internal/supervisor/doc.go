// Find My History - Location History Playback Widget
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/findmyhistory

/*
Package supervisor runs the widget host under a suture v4 supervisor tree.

	findmyhistory (root)
	├── widget-layer     WidgetService, ConfigWatchService
	├── messaging-layer  WebSocketHubService
	└── api-layer        HTTPServerService

Supervisor events (service failures, restarts, backoff) are logged through
sutureslog into the zerolog-backed slog handler from internal/logging.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddWidgetService(services.NewWidgetService(w))
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    logging.Error().Err(err).Msg("supervisor stopped")
	}

Service implementations live in the services subpackage.
*/
package supervisor
