// Find My History - Location History Playback Widget
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/findmyhistory

package widget

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/findmyhistory/internal/metrics"
	"github.com/tomtom215/findmyhistory/internal/validation"
)

// Command actions.
const (
	ActionPlay   = "play"
	ActionPause  = "pause"
	ActionToggle = "toggle"
	ActionScrub  = "scrub"
	ActionSpeed  = "speed"
	ActionDevice = "device"
	ActionReload = "reload"
)

// Command sources, used as a metrics label.
const (
	SourceHTTP      = "http"
	SourceWebSocket = "websocket"
	SourceConfig    = "config"
)

// Command is a user control input, as sent by the page over HTTP or the websocket.
type Command struct {
	Action   string   `json:"action" validate:"required,oneof=play pause toggle scrub speed device reload"`
	Device   string   `json:"device,omitempty" validate:"required_if=Action device"`
	Position *float64 `json:"position,omitempty" validate:"required_if=Action scrub,omitempty,gte=0,lte=1"`
	Speed    *float64 `json:"speed,omitempty" validate:"required_if=Action speed,omitempty,gt=0,lte=64"`
}

// Execute validates and applies cmd.
//
// Load failures triggered by device and reload commands are reported through
// the view, not the returned error; only an unknown device is returned.
func (w *Widget) Execute(ctx context.Context, source string, cmd Command) error {
	if verr := validation.ValidateStruct(&cmd); verr != nil {
		return verr
	}
	metrics.RecordCommand(cmd.Action, source)

	switch cmd.Action {
	case ActionPlay:
		return w.Play()
	case ActionPause:
		w.Pause()
		return nil
	case ActionToggle:
		return w.Toggle()
	case ActionScrub:
		return w.Scrub(*cmd.Position)
	case ActionSpeed:
		return w.SetSpeed(*cmd.Speed)
	case ActionDevice:
		return loadResult(w.SelectDevice(ctx, cmd.Device))
	case ActionReload:
		return loadResult(w.Load(ctx))
	default:
		return fmt.Errorf("unsupported action %q", cmd.Action)
	}
}

func loadResult(err error) error {
	if errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}
