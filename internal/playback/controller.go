// Find My History - Location History Playback Widget
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/findmyhistory

// Package playback implements the virtual clock that walks a sample series.
//
// A Controller is either Stopped or Playing. Play fixes a per-tick advance of
// span/(samples*StepsPerSample) and schedules a repeating tick; each tick moves
// the current time forward by advance*speed and stops playback once the last
// sample's time is reached. The advance does not depend on real elapsed time.
//
// Controller is not safe for concurrent use. The owner serializes calls,
// including the tick callbacks it receives from the scheduler.
package playback

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/findmyhistory/internal/models"
)

// Defaults match the dashboard card.
const (
	DefaultTickInterval   = 100 * time.Millisecond
	DefaultStepsPerSample = 10
	DefaultSpeed          = 1.0
)

var (
	// ErrNoSamples is returned when playback is requested on an empty series.
	ErrNoSamples = errors.New("no samples to play")

	// ErrInvalidSpeed is returned for non-positive or non-finite speeds.
	ErrInvalidSpeed = errors.New("playback speed must be a positive number")
)

// State is the controller state.
type State int

const (
	Stopped State = iota
	Playing
)

func (s State) String() string {
	if s == Playing {
		return "playing"
	}
	return "stopped"
}

// Config holds the clock parameters.
type Config struct {
	TickInterval   time.Duration
	StepsPerSample int
	Speed          float64
}

// TickFunc receives the session a tick belongs to.
type TickFunc func(session uint64)

// TickResult describes what a tick did.
type TickResult struct {
	// Advanced is false when the tick was stale or playback was stopped.
	Advanced bool

	// AutoPaused is true when this tick reached the end and stopped playback.
	AutoPaused bool

	Current time.Time
}

// Controller is the playback state machine.
type Controller struct {
	scheduler      Scheduler
	interval       time.Duration
	stepsPerSample int

	speed      float64
	current    time.Time
	hasCurrent bool

	state   State
	session uint64
	advance time.Duration
	end     time.Time
	cancel  func()
}

// NewController creates a stopped controller. Zero config values take the defaults.
func NewController(cfg Config, scheduler Scheduler) *Controller {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.StepsPerSample <= 0 {
		cfg.StepsPerSample = DefaultStepsPerSample
	}
	if cfg.Speed <= 0 || math.IsNaN(cfg.Speed) || math.IsInf(cfg.Speed, 0) {
		cfg.Speed = DefaultSpeed
	}
	if scheduler == nil {
		scheduler = TickerScheduler{}
	}
	return &Controller{
		scheduler:      scheduler,
		interval:       cfg.TickInterval,
		stepsPerSample: cfg.StepsPerSample,
		speed:          cfg.Speed,
	}
}

// StepFor returns the fixed per-tick advance for series.
func StepFor(series models.SampleSeries, stepsPerSample int) time.Duration {
	if series.Len() == 0 || stepsPerSample <= 0 {
		return 0
	}
	return series.Span() / time.Duration(series.Len()*stepsPerSample)
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Playing reports whether the controller is Playing.
func (c *Controller) Playing() bool {
	return c.state == Playing
}

// Session identifies the current Play call; ticks carrying an older
// session are ignored.
func (c *Controller) Session() uint64 {
	return c.session
}

// Current returns the current time, if set.
func (c *Controller) Current() (time.Time, bool) {
	return c.current, c.hasCurrent
}

// SetCurrent moves the clock without changing play state. Used after loads.
func (c *Controller) SetCurrent(t time.Time) {
	c.current = t
	c.hasCurrent = true
}

// Speed returns the playback multiplier.
func (c *Controller) Speed() float64 {
	return c.speed
}

// SetSpeed changes the multiplier; it takes effect on the next tick.
func (c *Controller) SetSpeed(speed float64) error {
	if speed <= 0 || math.IsNaN(speed) || math.IsInf(speed, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidSpeed, speed)
	}
	c.speed = speed
	return nil
}

// Interval returns the real time between ticks.
func (c *Controller) Interval() time.Duration {
	return c.interval
}

// Play starts playback over series. It is a no-op while already playing.
// An unset current time starts from the first sample.
func (c *Controller) Play(series models.SampleSeries, onTick TickFunc) error {
	if c.state == Playing {
		return nil
	}
	if series.IsEmpty() {
		return ErrNoSamples
	}

	first, _ := series.First()
	last, _ := series.Last()
	if !c.hasCurrent {
		c.SetCurrent(first.Time)
	}

	c.session++
	session := c.session
	c.advance = StepFor(series, c.stepsPerSample)
	c.end = last.Time
	c.state = Playing
	c.cancel = c.scheduler.Every(c.interval, func() { onTick(session) })
	return nil
}

// Pause stops playback and cancels the scheduled tick. It reports whether the
// state changed; pausing a stopped controller is a no-op.
func (c *Controller) Pause() bool {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.state == Stopped {
		return false
	}
	c.state = Stopped
	return true
}

// Toggle plays when stopped and pauses when playing.
func (c *Controller) Toggle(series models.SampleSeries, onTick TickFunc) error {
	if c.state == Playing {
		c.Pause()
		return nil
	}
	return c.Play(series, onTick)
}

// Tick advances the clock by one step. Ticks from an older session or
// arriving after Pause are ignored.
func (c *Controller) Tick(session uint64) TickResult {
	if c.state != Playing || session != c.session {
		return TickResult{Current: c.current}
	}

	step := time.Duration(float64(c.advance) * c.speed)
	c.current = c.current.Add(step)

	if !c.current.Before(c.end) {
		c.Pause()
		c.current = c.end
		return TickResult{Advanced: true, AutoPaused: true, Current: c.current}
	}
	return TickResult{Advanced: true, Current: c.current}
}

// Scrub maps position in [0,1] linearly onto the series span and moves the
// clock there. Play state is unchanged; out-of-range positions are clamped.
func (c *Controller) Scrub(series models.SampleSeries, position float64) (time.Time, error) {
	t, ok := series.TimeAt(position)
	if !ok {
		return time.Time{}, ErrNoSamples
	}
	c.SetCurrent(t)
	return t, nil
}

// Position returns the current time normalized over the series span. It is 1
// when the current time is unset.
func (c *Controller) Position(series models.SampleSeries) float64 {
	if !c.hasCurrent || series.IsEmpty() {
		return 1
	}
	return series.PositionOf(c.current)
}
