// Find My History - Location History Playback Widget
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/findmyhistory

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/findmyhistory/internal/api"
	"github.com/tomtom215/findmyhistory/internal/config"
	"github.com/tomtom215/findmyhistory/internal/locations"
	"github.com/tomtom215/findmyhistory/internal/logging"
	"github.com/tomtom215/findmyhistory/internal/maprender"
	"github.com/tomtom215/findmyhistory/internal/playback"
	"github.com/tomtom215/findmyhistory/internal/supervisor"
	"github.com/tomtom215/findmyhistory/internal/supervisor/services"
	ws "github.com/tomtom215/findmyhistory/internal/websocket"
	"github.com/tomtom215/findmyhistory/internal/widget"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})

	logging.Info().
		Str("version", version).
		Strs("devices", cfg.Widget.Devices).
		Str("time_range", cfg.Widget.TimeRange()).
		Str("api_url", cfg.Widget.BaseURL()).
		Msg("Starting Find My History")

	// === LOCATION SOURCE ===

	var fetcher locations.Fetcher = locations.NewClient(cfg.Upstream)
	var breaker api.BreakerStater
	if cfg.Upstream.Breaker.Enabled {
		cb := locations.NewCircuitBreakerFetcher(fetcher, cfg.Upstream.Breaker)
		fetcher = cb
		breaker = cb
		logging.Info().
			Uint32("min_requests", cfg.Upstream.Breaker.MinRequests).
			Float64("failure_ratio", cfg.Upstream.Breaker.FailureRatio).
			Msg("Circuit breaker enabled for location API")
	}

	// === WIDGET ===

	w, err := widget.New(widget.Options{
		Config: cfg.Widget,
		Playback: playback.Config{
			TickInterval:   cfg.Playback.TickInterval,
			StepsPerSample: cfg.Playback.StepsPerSample,
			Speed:          cfg.Playback.Speed,
		},
		Style:   maprender.StyleFromConfig(cfg.Map),
		Fetcher: fetcher,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create widget")
	}

	wsHub := ws.NewHub(ws.Options{
		Widget:       w,
		CommandRate:  cfg.Security.WSCommandRate,
		CommandBurst: cfg.Security.WSCommandBurst,
	})
	w.Subscribe(wsHub.BroadcastWidgetUpdate)

	// === HTTP ===

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}
	for _, origin := range cfg.Security.CORSOrigins {
		if origin == "*" {
			logging.Warn().Msg("CORS allows any origin; any website can drive playback")
			break
		}
	}

	handler := api.NewHandler(api.HandlerOptions{
		Widget:      w,
		Hub:         wsHub,
		Breaker:     breaker,
		CORSOrigins: cfg.Security.CORSOrigins,
		Version:     version,
	})
	router := api.NewRouter(handler, api.ChiMiddlewareConfigFromSecurity(cfg.Security))

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	// === SUPERVISOR TREE ===

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout + 5*time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddWidgetService(services.NewWidgetService(w))
	if path := config.ConfigFilePath(); path != "" {
		tree.AddWidgetService(services.NewConfigWatchService(path, w))
		logging.Info().Str("path", path).Msg("Config watcher added to supervisor tree")
	}
	tree.AddMessagingService(services.NewWebSocketHubService(wsHub))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START ===

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
