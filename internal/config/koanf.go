// Find My History - Location History Playback Widget
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/findmyhistory

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/findmyhistory/config.yaml",
	"/etc/findmyhistory/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Map defaults match the dashboard card: OpenStreetMap tiles, a blue path
// and a green/red marker for in-zone/out-of-zone samples.
const (
	DefaultTileURL     = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	DefaultAttribution = "© OpenStreetMap contributors"
	DefaultZoom        = 13
)

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Widget: DefaultWidgetConfig(),
		Upstream: UpstreamConfig{
			Timeout: 30 * time.Second,
			Limit:   10000,
			Breaker: BreakerConfig{
				Enabled:      true,
				MinRequests:  3,
				FailureRatio: 0.6,
				Interval:     time.Minute,
				OpenTimeout:  30 * time.Second,
				HalfOpenMax:  1,
			},
		},
		Playback: PlaybackConfig{
			TickInterval:   100 * time.Millisecond,
			StepsPerSample: 10,
			Speed:          1,
		},
		Map: MapConfig{
			TileURL:      DefaultTileURL,
			Attribution:  DefaultAttribution,
			Zoom:         DefaultZoom,
			PathColor:    "#3388ff",
			PathWeight:   3,
			PathOpacity:  0.7,
			InZoneColor:  "green",
			OutZoneColor: "red",
		},
		Server: ServerConfig{
			Port:            8099,
			Host:            "0.0.0.0",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   120,
			RateLimitWindow: time.Minute,
			WSCommandRate:   20,
			WSCommandBurst:  40,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in defaults
//  2. Config File: optional YAML config file (if exists)
//  3. Environment Variables: override any mapped setting
func LoadWithKoanf() (*Config, error) {
	return loadFrom(findConfigFile())
}

// LoadFile loads configuration with the given YAML file as the file layer.
// An empty path skips the file layer.
func LoadFile(path string) (*Config, error) {
	return loadFrom(path)
}

func loadFrom(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Environment variables (highest priority)
	// WIDGET_API_URL -> widget.api_url
	// PLAYBACK_TICK_INTERVAL -> playback.tick_interval
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if cfg.Widget.Devices == nil {
		cfg.Widget.Devices = []string{}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// ConfigFilePath returns the config file LoadWithKoanf would use, or "".
func ConfigFilePath() string {
	return findConfigFile()
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"widget.devices",
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings while the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		strVal, ok := val.(string)
		if !ok {
			continue
		}

		trimmed := splitList(strVal)
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	// Widget
	"widget_devices":            "widget.devices",
	"widget_default_time_range": "widget.default_time_range",
	"widget_highlight_unknown":  "widget.highlight_unknown",
	"widget_api_url":            "widget.api_url",
	"api_url":                   "widget.api_url",

	// Upstream location API
	"upstream_timeout":               "upstream.timeout",
	"upstream_limit":                 "upstream.limit",
	"upstream_breaker_enabled":       "upstream.breaker.enabled",
	"upstream_breaker_min_requests":  "upstream.breaker.min_requests",
	"upstream_breaker_failure_ratio": "upstream.breaker.failure_ratio",
	"upstream_breaker_interval":      "upstream.breaker.interval",
	"upstream_breaker_open_timeout":  "upstream.breaker.open_timeout",
	"upstream_breaker_half_open_max": "upstream.breaker.half_open_max",

	// Playback
	"playback_tick_interval":    "playback.tick_interval",
	"playback_steps_per_sample": "playback.steps_per_sample",
	"playback_speed":            "playback.speed",

	// Map
	"map_tile_url":       "map.tile_url",
	"map_attribution":    "map.attribution",
	"map_zoom":           "map.zoom",
	"map_path_color":     "map.path_color",
	"map_path_weight":    "map.path_weight",
	"map_path_opacity":   "map.path_opacity",
	"map_in_zone_color":  "map.in_zone_color",
	"map_out_zone_color": "map.out_zone_color",

	// Server
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"ws_command_rate":     "security.ws_command_rate",
	"ws_command_burst":    "security.ws_command_burst",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - WIDGET_DEVICES -> widget.devices
//   - API_URL -> widget.api_url
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}

// WatchConfigFile sets up a file watcher for hot-reload capability.
// The callback runs on the watcher goroutine; the caller synchronizes
// access to whatever it reloads.
func WatchConfigFile(path string, callback func()) (stop func() error, err error) {
	provider := file.Provider(path)
	if err := provider.Watch(func(_ interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	}); err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	return provider.Unwatch, nil
}
