// Find My History - Location History Playback Widget
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/findmyhistory

package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in values from defaultConfig()
//  2. Config File: optional YAML file (config.yaml or CONFIG_PATH)
//  3. Environment Variables: override any mapped setting
//
// Config is immutable after Load() and safe for concurrent reads.
type Config struct {
	Widget   WidgetConfig   `koanf:"widget"`
	Upstream UpstreamConfig `koanf:"upstream"`
	Playback PlaybackConfig `koanf:"playback"`
	Map      MapConfig      `koanf:"map"`
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// UpstreamConfig controls the HTTP client used against the location API.
type UpstreamConfig struct {
	// Timeout bounds a single GET /api/locations request.
	// Default: 30s
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	// Limit is the maximum number of samples requested per load.
	// Default: 10000
	Limit int `koanf:"limit" validate:"min=1"`

	// Breaker configures the circuit breaker wrapped around the client.
	Breaker BreakerConfig `koanf:"breaker"`
}

// BreakerConfig holds gobreaker settings.
type BreakerConfig struct {
	Enabled      bool          `koanf:"enabled"`
	MinRequests  uint32        `koanf:"min_requests" validate:"min=1"`
	FailureRatio float64       `koanf:"failure_ratio" validate:"gt=0,lte=1"`
	Interval     time.Duration `koanf:"interval" validate:"gte=0"`
	OpenTimeout  time.Duration `koanf:"open_timeout" validate:"gt=0"`
	HalfOpenMax  uint32        `koanf:"half_open_max" validate:"min=1"`
}

// PlaybackConfig holds the virtual clock parameters.
type PlaybackConfig struct {
	// TickInterval is the real time between playback ticks.
	// Default: 100ms
	TickInterval time.Duration `koanf:"tick_interval" validate:"gt=0"`

	// StepsPerSample is the number of synthetic ticks per recorded sample.
	// Default: 10
	StepsPerSample int `koanf:"steps_per_sample" validate:"min=1"`

	// Speed is the initial playback speed multiplier.
	// Default: 1
	Speed float64 `koanf:"speed" validate:"gt=0"`
}

// MapConfig describes the map surface handed to the browser.
type MapConfig struct {
	TileURL      string  `koanf:"tile_url" validate:"required"`
	Attribution  string  `koanf:"attribution"`
	Zoom         int     `koanf:"zoom" validate:"min=0,max=22"`
	PathColor    string  `koanf:"path_color" validate:"required"`
	PathWeight   int     `koanf:"path_weight" validate:"min=1"`
	PathOpacity  float64 `koanf:"path_opacity" validate:"gte=0,lte=1"`
	InZoneColor  string  `koanf:"in_zone_color" validate:"required"`
	OutZoneColor string  `koanf:"out_zone_color" validate:"required"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	Host            string        `koanf:"host"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"min=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// WSCommandRate is the sustained number of control commands per second a
	// single websocket client may send; WSCommandBurst is the bucket size.
	WSCommandRate  float64 `koanf:"ws_command_rate" validate:"gt=0"`
	WSCommandBurst int     `koanf:"ws_command_burst" validate:"min=1"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level" validate:"oneof=trace debug info warn warning error fatal panic disabled"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format" validate:"oneof=json console"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// Load reads configuration from defaults, an optional YAML file and the environment.
func Load() (*Config, error) {
	cfg, err := LoadWithKoanf()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
