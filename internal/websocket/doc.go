// Find My History - Location History Playback Widget
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/findmyhistory

/*
Package websocket keeps browser clients in sync with the widget.

The hub fans widget updates out to every connected page and passes control
commands from a page back to the widget. It uses gorilla/websocket with a
hub-client layout:

	┌──────────┐   widget_update   ┌──────────┐
	│  Widget  │ ────────────────▶ │   Hub    │ ──▶ Client1, Client2, ...
	└──────────┘ ◀──────────────── └──────────┘
	               command

Each client runs two goroutines:
  - readPump: reads commands and pings, enforcing a per-client rate limit
  - writePump: writes queued messages and keepalive pings

Message Types:

  - widget_update (server → client): {widget_id, version, view, scene}
  - command (client → server): {action, device?, position?, speed?}
  - error (server → client): a command failed or was throttled
  - ping / pong: application-level keepalive

Clients drop widget_update messages whose version is older than the last one
they applied, since the greeting snapshot and broadcasts travel separately.
*/
package websocket
