// Find My History - Location History Playback Widget
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/findmyhistory

// Package widget implements HistoryWidget: it owns the widget state, drives
// loads through a locations.Fetcher, runs the playback controller and turns
// every mutation into a view model plus map scene for listeners.
//
// All state is guarded by a single mutex. Playback ticks arrive on the
// scheduler goroutine and take the same lock, so ticks and commands are
// serialized exactly like events on a single queue.
package widget

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/findmyhistory/internal/config"
	"github.com/tomtom215/findmyhistory/internal/locations"
	"github.com/tomtom215/findmyhistory/internal/logging"
	"github.com/tomtom215/findmyhistory/internal/maprender"
	"github.com/tomtom215/findmyhistory/internal/metrics"
	"github.com/tomtom215/findmyhistory/internal/models"
	"github.com/tomtom215/findmyhistory/internal/playback"
	"github.com/tomtom215/findmyhistory/internal/timerange"
	"github.com/tomtom215/findmyhistory/internal/view"
)

// User-visible status texts.
const (
	MessageNoDevices = "No devices configured"
	MessageNoData    = "No location data found for selected time range"
	failedLoadPrefix = "Failed to load data: "
)

var (
	// ErrNoDevices is returned by Load when the configuration lists no devices.
	ErrNoDevices = errors.New("no devices configured")

	// ErrNotFound is returned when selecting a device that is not configured.
	ErrNotFound = errors.New("device not found")

	// ErrSuperseded is returned by Load when a newer load started while this
	// one was in flight. Its response was discarded.
	ErrSuperseded = errors.New("load superseded by a newer request")
)

// Update is what listeners receive after every state change.
type Update struct {
	WidgetID string           `json:"widget_id"`
	Version  uint64           `json:"version"`
	View     view.ViewModel   `json:"view"`
	Scene    *maprender.Scene `json:"scene"`
}

// Listener is called with the widget lock held. It must not block and must
// not call back into the widget.
type Listener func(Update)

// Options configures a Widget.
type Options struct {
	Config   config.WidgetConfig
	Playback playback.Config
	Style    maprender.Style

	// Fetcher loads samples. Required.
	Fetcher locations.Fetcher

	// Scheduler drives playback ticks; nil uses a real ticker.
	Scheduler playback.Scheduler

	// Location is the display time zone; nil uses time.Local.
	Location *time.Location

	// Now is the clock used to compute query windows; nil uses time.Now.
	Now func() time.Time
}

// Widget is a HistoryWidget instance.
type Widget struct {
	mu sync.Mutex

	id      string
	cfg     config.WidgetConfig
	fetcher locations.Fetcher
	now     func() time.Time
	logger  zerolog.Logger

	series   models.SampleSeries
	selected string

	status     view.Status
	statusText string

	ctrl     *playback.Controller
	renderer *maprender.Renderer

	generation uint64
	version    uint64
	listeners  []Listener
}

// New creates a widget. Empty API URL and time range fields take the
// defaults. It does not load; call Load or Refresh.
func New(opts Options) (*Widget, error) {
	if opts.Fetcher == nil {
		return nil, errors.New("widget: fetcher is required")
	}

	cfg := opts.Config.Clone()
	if cfg.APIURL == "" {
		cfg.APIURL = config.DefaultAPIURL
	}
	if cfg.DefaultTimeRange == "" {
		cfg.DefaultTimeRange = config.DefaultTimeRange
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("widget config: %w", err)
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	id := uuid.New().String()
	return &Widget{
		id:       id,
		cfg:      cfg,
		fetcher:  opts.Fetcher,
		now:      now,
		logger:   logging.WithComponent("widget").With().Str("widget_id", id).Logger(),
		ctrl:     playback.NewController(opts.Playback, opts.Scheduler),
		renderer: maprender.NewRenderer(opts.Style, opts.Location),
	}, nil
}

// ID returns the widget instance ID.
func (w *Widget) ID() string {
	return w.id
}

// Subscribe registers l for updates.
func (w *Widget) Subscribe(l Listener) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, l)
}

// Config returns a copy of the active widget configuration.
func (w *Widget) Config() config.WidgetConfig {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cfg.Clone()
}

// SelectedDevice returns the device the next load targets.
func (w *Widget) SelectedDevice() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.effectiveDevice()
}

// Series returns the loaded samples. The slice must not be modified.
func (w *Widget) Series() models.SampleSeries {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.series
}

// Playing reports whether playback is running.
func (w *Widget) Playing() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ctrl.Playing()
}

// Current returns the playback clock.
func (w *Widget) Current() (time.Time, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ctrl.Current()
}

// Status returns the content-area status and its text.
func (w *Widget) Status() (view.Status, string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status, w.statusText
}

func (w *Widget) effectiveDevice() string {
	if w.selected != "" {
		return w.selected
	}
	if len(w.cfg.Devices) > 0 {
		return w.cfg.Devices[0]
	}
	return ""
}

// Load fetches the selected device's history for the configured range.
//
// Failures never escape as panics: a missing device list or a failed fetch
// moves the widget into the error state and leaves the loaded samples
// untouched, and an empty result moves it into the message state. A
// response that arrives after a newer Load started is dropped.
func (w *Widget) Load(ctx context.Context) error {
	w.mu.Lock()
	device := w.effectiveDevice()
	if device == "" {
		w.generation++
		w.setStatus(view.StatusError, MessageNoDevices)
		w.notify()
		w.mu.Unlock()
		metrics.RecordLoad(metrics.LoadOutcomeError, 0)
		return ErrNoDevices
	}

	w.generation++
	gen := w.generation
	q := locations.Query{
		BaseURL:  w.cfg.BaseURL(),
		DeviceID: device,
		Window:   timerange.WindowEnding(w.now(), w.cfg.TimeRange()),
	}
	w.mu.Unlock()

	logger := w.logger.With().Str("device_id", device).Uint64("generation", gen).Logger()
	logger.Debug().
		Time("start", q.Window.Start).
		Time("end", q.Window.End).
		Float64("hours", q.Window.Hours()).
		Msg("Loading location history")

	series, err := w.fetcher.Fetch(ctx, q)

	w.mu.Lock()
	defer w.mu.Unlock()

	if gen != w.generation {
		metrics.RecordStaleResponse()
		logger.Debug().Uint64("current_generation", w.generation).Msg("Discarding stale location response")
		return ErrSuperseded
	}

	if err != nil {
		metrics.RecordLoad(metrics.LoadOutcomeError, 0)
		logger.Warn().Err(err).Msg("Failed to load location history")
		w.setStatus(view.StatusError, failedLoadPrefix+err.Error())
		w.notify()
		return fmt.Errorf("load %s: %w", device, err)
	}

	if series.IsEmpty() {
		metrics.RecordLoad(metrics.LoadOutcomeEmpty, 0)
		logger.Info().Msg("No location data in range")
		w.setStatus(view.StatusMessage, MessageNoData)
		w.notify()
		return nil
	}

	metrics.RecordLoad(metrics.LoadOutcomeOK, series.Len())
	logger.Info().Int("samples", series.Len()).Msg("Loaded location history")

	w.series = series
	w.setStatus(view.StatusReady, "")
	last, _ := series.Last()
	w.ctrl.SetCurrent(last.Time)

	// A running tick loop was armed with the previous series' span.
	if w.ctrl.Pause() {
		_ = w.ctrl.Play(w.series, w.onTick)
	}

	w.notify()
	return nil
}

// Refresh loads only when nothing has been loaded yet. Hosts call it when
// they hand the widget a fresh context, mirroring a dashboard re-attaching
// the card.
func (w *Widget) Refresh(ctx context.Context) error {
	w.mu.Lock()
	empty := w.series.IsEmpty()
	w.mu.Unlock()
	if !empty {
		return nil
	}
	return w.Load(ctx)
}

// SelectDevice switches to id and reloads. The reload is a full fetch for
// the new device, not a filter over loaded data.
func (w *Widget) SelectDevice(ctx context.Context, id string) error {
	w.mu.Lock()
	if !w.cfg.HasDevice(id) {
		w.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	w.selected = id
	w.mu.Unlock()

	return w.Load(ctx)
}

// Reconfigure merges opts over the active configuration and reloads.
func (w *Widget) Reconfigure(ctx context.Context, opts config.WidgetOptions) error {
	w.mu.Lock()
	next := w.cfg.Merge(opts)
	w.mu.Unlock()

	return w.SetConfig(ctx, next)
}

// SetConfig replaces the active configuration and reloads. A selected device
// that is no longer configured is forgotten.
func (w *Widget) SetConfig(ctx context.Context, cfg config.WidgetConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("widget config: %w", err)
	}

	w.mu.Lock()
	w.cfg = cfg.Clone()
	if w.selected != "" && !w.cfg.HasDevice(w.selected) {
		w.selected = ""
	}
	w.mu.Unlock()

	w.logger.Info().
		Strs("devices", cfg.Devices).
		Str("time_range", cfg.TimeRange()).
		Msg("Widget reconfigured")

	return w.Load(ctx)
}

// Play starts playback. It is a no-op while playing.
func (w *Widget) Play() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.play()
}

func (w *Widget) play() error {
	if w.ctrl.Playing() {
		return nil
	}
	if err := w.ctrl.Play(w.series, w.onTick); err != nil {
		return err
	}
	metrics.SetPlaying(true)
	w.notify()
	return nil
}

// Pause stops playback. It is a no-op while stopped.
func (w *Widget) Pause() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pause()
}

func (w *Widget) pause() {
	if w.ctrl.Pause() {
		metrics.SetPlaying(false)
		w.notify()
	}
}

// Toggle plays when stopped and pauses when playing.
func (w *Widget) Toggle() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ctrl.Playing() {
		w.pause()
		return nil
	}
	return w.play()
}

// Scrub moves the clock to a normalized position of the loaded span and
// redraws immediately. Play state is unchanged.
func (w *Widget) Scrub(position float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.ctrl.Scrub(w.series, position); err != nil {
		return err
	}
	w.notify()
	return nil
}

// SetSpeed sets the playback multiplier.
func (w *Widget) SetSpeed(speed float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ctrl.SetSpeed(speed); err != nil {
		return err
	}
	w.notify()
	return nil
}

// Close stops playback and releases the tick task.
func (w *Widget) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ctrl.Pause() {
		metrics.SetPlaying(false)
	}
}

// onTick runs on the scheduler goroutine.
func (w *Widget) onTick(session uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	res := w.ctrl.Tick(session)
	if !res.Advanced {
		return
	}
	metrics.RecordPlaybackTick(res.AutoPaused)
	if res.AutoPaused {
		metrics.SetPlaying(false)
		w.logger.Debug().Time("current", res.Current).Msg("Playback reached the end")
	}
	w.notify()
}

// Snapshot returns the current view and a scene that can initialize a map
// from scratch.
func (w *Widget) Snapshot() Update {
	w.mu.Lock()
	defer w.mu.Unlock()

	u := Update{WidgetID: w.id, Version: w.version, View: view.Render(w.viewState())}
	if w.status == view.StatusReady {
		if current, ok := w.ctrl.Current(); ok {
			if scene, ok := w.renderer.Peek(w.series, current); ok {
				u.Scene = &scene
			}
		}
	}
	return u
}

func (w *Widget) setStatus(status view.Status, text string) {
	// An error panel discards the map; the message state leaves it as drawn.
	if status == view.StatusError {
		w.renderer.Reset()
	}
	w.status = status
	w.statusText = text
}

func (w *Widget) viewState() view.State {
	s := view.State{
		Devices:          w.cfg.Devices,
		SelectedDevice:   w.effectiveDevice(),
		HighlightUnknown: w.cfg.HighlightUnknown,
		Status:           w.status,
		StatusText:       w.statusText,
		Playing:          w.ctrl.Playing(),
		Speed:            w.ctrl.Speed(),
		Position:         w.ctrl.Position(w.series),
		Stats:            w.series.Stats(),
		FormatTime:       w.renderer.FormatTime,
	}
	s.Current, s.HasCurrent = w.ctrl.Current()
	return s
}

// notify renders and delivers an update. Callers hold w.mu.
func (w *Widget) notify() {
	w.version++
	u := Update{WidgetID: w.id, Version: w.version, View: view.Render(w.viewState())}

	if w.status == view.StatusReady {
		if current, ok := w.ctrl.Current(); ok {
			if scene, ok := w.renderer.Draw(w.series, current); ok {
				u.Scene = &scene
			}
		}
	}

	for _, l := range w.listeners {
		l(u)
	}
}
