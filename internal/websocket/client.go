// Find My History - Location History Playback Widget
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/findmyhistory

package websocket

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/tomtom215/findmyhistory/internal/logging"
	"github.com/tomtom215/findmyhistory/internal/metrics"
	"github.com/tomtom215/findmyhistory/internal/widget"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	commandTimeout = 30 * time.Second
)

// clientIDCounter hands out monotonically increasing IDs so broadcasts visit
// clients in a stable order.
var clientIDCounter atomic.Uint64

// Client is a middleman between the websocket connection and the hub
type Client struct {
	id      uint64
	hub     *Hub
	conn    *websocket.Conn
	send    chan Message
	limiter *rate.Limiter

	// closed is set by the hub, under hub.mu, when send is closed.
	closed bool
}

// NewClient creates a new Client with a unique ID and its own command limiter.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:      clientIDCounter.Add(1),
		hub:     hub,
		conn:    conn,
		send:    make(chan Message, 256),
		limiter: rate.NewLimiter(hub.commandRate, hub.commandBurst),
	}
}

// ID returns the client's unique identifier
func (c *Client) ID() uint64 {
	return c.id
}

// Greet queues the widget's current state so a new client can draw before
// the next broadcast. Call it before Register.
func (c *Client) Greet() {
	if c.hub.widget == nil {
		return
	}
	c.queue(Message{Type: MessageTypeWidgetUpdate, Data: c.hub.widget.Snapshot()})
}

// queue sends msg to this client only, dropping it when the buffer is full
// or the hub has already closed the client.
func (c *Client) queue(msg Message) {
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.send <- msg:
	default:
		metrics.WSErrors.WithLabelValues("send_full").Inc()
	}
}

// readPump pumps messages from the websocket connection to the widget
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.Unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				metrics.WSErrors.WithLabelValues("unexpected_close").Inc()
				logging.Error().Err(err).Msg("unexpected websocket close error")
			}
			break
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			metrics.WSErrors.WithLabelValues("decode").Inc()
			c.queue(Message{Type: MessageTypeError, Data: ErrorData{Message: "invalid message"}})
			continue
		}

		switch msg.Type {
		case MessageTypePing:
			c.queue(Message{Type: MessageTypePong})
		case MessageTypeCommand:
			c.handleCommand(msg.Data)
		default:
			logging.Debug().Str("message_type", msg.Type).Msg("ignoring websocket message")
		}
	}
}

// handleCommand runs one client command against the widget. The resulting
// state reaches every client through the widget's broadcast, so only
// failures are answered directly.
func (c *Client) handleCommand(data json.RawMessage) {
	var cmd widget.Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		metrics.WSErrors.WithLabelValues("decode").Inc()
		c.queue(Message{Type: MessageTypeError, Data: ErrorData{Message: "invalid command"}})
		return
	}

	if !c.limiter.Allow() {
		metrics.WSCommandsThrottled.Inc()
		c.queue(Message{Type: MessageTypeError, Data: ErrorData{Action: cmd.Action, Message: "too many commands"}})
		return
	}

	if c.hub.widget == nil {
		c.queue(Message{Type: MessageTypeError, Data: ErrorData{Action: cmd.Action, Message: "widget unavailable"}})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := c.hub.widget.Execute(ctx, widget.SourceWebSocket, cmd); err != nil {
		logging.Debug().Err(err).Str("action", cmd.Action).Uint64("client_id", c.id).Msg("websocket command rejected")
		c.queue(Message{Type: MessageTypeError, Data: ErrorData{Action: cmd.Action, Message: err.Error()}})
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline")
				return
			}

			if !ok {
				// The hub closed the channel
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					logging.Debug().Err(err).Msg("failed to write close message")
				}
				return
			}

			payload, err := MarshalMessage(message)
			if err != nil {
				metrics.WSErrors.WithLabelValues("encode").Inc()
				logging.Error().Err(err).Str("message_type", message.Type).Msg("failed to encode websocket message")
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				metrics.WSErrors.WithLabelValues("write").Inc()
				logging.Debug().Err(err).Msg("failed to write websocket message")
				return
			}
			metrics.WSMessagesSent.WithLabelValues(message.Type).Inc()

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline for ping")
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start begins reading and writing for the client
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}
