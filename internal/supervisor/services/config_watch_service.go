// Find My History - Location History Playback Widget
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/findmyhistory

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/findmyhistory/internal/config"
	"github.com/tomtom215/findmyhistory/internal/logging"
	"github.com/tomtom215/findmyhistory/internal/metrics"
	"github.com/tomtom215/findmyhistory/internal/widget"
)

// Reconfigurable accepts a new widget configuration and reloads.
type Reconfigurable interface {
	SetConfig(ctx context.Context, cfg config.WidgetConfig) error
}

// WatchFunc starts watching path and returns a function that stops it.
// config.WatchConfigFile satisfies it.
type WatchFunc func(path string, onChange func()) (stop func() error, err error)

// LoadFunc reads the full configuration. config.LoadFile satisfies it.
type LoadFunc func(path string) (*config.Config, error)

// ConfigWatchService re-applies the widget section of the config file when
// the file changes. The log level is re-applied too; other sections need a
// restart.
type ConfigWatchService struct {
	path   string
	widget Reconfigurable
	watch  WatchFunc
	load   LoadFunc
	name   string

	// reloadTimeout bounds the load triggered by one change.
	reloadTimeout time.Duration
}

// NewConfigWatchService watches path with the koanf file provider.
func NewConfigWatchService(path string, w Reconfigurable) *ConfigWatchService {
	return &ConfigWatchService{
		path:          path,
		widget:        w,
		watch:         config.WatchConfigFile,
		load:          config.LoadFile,
		name:          "config-watcher",
		reloadTimeout: 30 * time.Second,
	}
}

// Serve implements suture.Service. Change events are serialized through a
// channel so a burst of writes cannot run concurrent reloads.
func (s *ConfigWatchService) Serve(ctx context.Context) error {
	logger := logging.WithComponent(s.name).With().Str("path", s.path).Logger()

	changes := make(chan struct{}, 1)
	stop, err := s.watch(s.path, func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return fmt.Errorf("config watch: %w", err)
	}
	defer func() {
		if err := stop(); err != nil {
			logger.Debug().Err(err).Msg("Failed to stop config watch")
		}
	}()

	logger.Info().Msg("Watching config file")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changes:
			s.apply(ctx)
		}
	}
}

func (s *ConfigWatchService) apply(ctx context.Context) {
	logger := logging.WithComponent(s.name).With().Str("path", s.path).Logger()

	cfg, err := s.load(s.path)
	if err != nil {
		logger.Error().Err(err).Msg("Config reload rejected; keeping previous configuration")
		return
	}

	logging.SetLevelString(cfg.Logging.Level)
	metrics.RecordCommand(widget.ActionReload, widget.SourceConfig)

	reloadCtx, cancel := context.WithTimeout(ctx, s.reloadTimeout)
	defer cancel()
	if err := s.widget.SetConfig(reloadCtx, cfg.Widget); err != nil {
		logger.Warn().Err(err).Msg("Widget reload after config change failed")
		return
	}
	logger.Info().Strs("devices", cfg.Widget.Devices).Msg("Config reloaded")
}

func (s *ConfigWatchService) String() string {
	return s.name
}
