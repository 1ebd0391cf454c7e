// Find My History - Location History Playback Widget
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/findmyhistory

package websocket

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/findmyhistory/internal/widget"
)

// setupWebSocketServer creates a test peer; handler drives the browser side.
func setupWebSocketServer(t *testing.T, handler func(t *testing.T, conn *websocket.Conn)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Failed to upgrade connection: %v", err)
			return
		}
		defer conn.Close()
		handler(t, conn)
	}))
}

// dialWebSocket establishes a WebSocket connection to the test server
func dialWebSocket(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	return conn
}

// readType reads messages until one of type want arrives.
func readType(t *testing.T, conn *websocket.Conn, want string) map[string]interface{} {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var msg struct {
			Type string                 `json:"type"`
			Data map[string]interface{} `json:"data"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			t.Errorf("read %s: %v", want, err)
			return nil
		}
		if msg.Type == want {
			return msg.Data
		}
	}
}

func TestClient_Constants(t *testing.T) {
	if pingPeriod != (pongWait*9)/10 {
		t.Errorf("pingPeriod = %v", pingPeriod)
	}
	if writeWait != 10*time.Second || pongWait != 60*time.Second {
		t.Errorf("unexpected timeouts %v %v", writeWait, pongWait)
	}
}

func TestNewClient_UniqueIDs(t *testing.T) {
	hub := NewHub(Options{})
	a, b := NewClient(hub, nil), NewClient(hub, nil)
	if a.ID() == b.ID() || b.ID() < a.ID() {
		t.Errorf("IDs not increasing: %d then %d", a.ID(), b.ID())
	}
	if cap(a.send) != 256 {
		t.Errorf("send capacity = %d", cap(a.send))
	}
}

func TestClient_GreetSendsSnapshot(t *testing.T) {
	fw := &fakeWidget{snapshot: widget.Update{WidgetID: "w1", Version: 3}}
	hub := NewHub(Options{Widget: fw})

	got := make(chan map[string]interface{}, 1)
	server := setupWebSocketServer(t, func(t *testing.T, conn *websocket.Conn) {
		got <- readType(t, conn, MessageTypeWidgetUpdate)
	})
	defer server.Close()

	conn := dialWebSocket(t, server)
	defer conn.Close()

	client := NewClient(hub, conn)
	client.Greet()
	go client.writePump()

	select {
	case data := <-got:
		if data["widget_id"] != "w1" || data["version"] != float64(3) {
			t.Errorf("snapshot = %v", data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("snapshot not received")
	}
}

func TestClient_PingPong(t *testing.T) {
	hub := startHub(t, Options{})

	received := make(chan bool, 1)
	server := setupWebSocketServer(t, func(t *testing.T, conn *websocket.Conn) {
		if err := conn.WriteJSON(Message{Type: MessageTypePing}); err != nil {
			t.Errorf("write ping: %v", err)
			return
		}
		readType(t, conn, MessageTypePong)
		received <- true
	})
	defer server.Close()

	conn := dialWebSocket(t, server)
	client := NewClient(hub, conn)
	client.Start()

	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("pong not received")
	}
}

func TestClient_CommandReachesWidget(t *testing.T) {
	fw := &fakeWidget{}
	hub := startHub(t, Options{Widget: fw})

	server := setupWebSocketServer(t, func(t *testing.T, conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"command","data":{"action":"scrub","position":0.25}}`))
		time.Sleep(200 * time.Millisecond)
	})
	defer server.Close()

	conn := dialWebSocket(t, server)
	client := NewClient(hub, conn)
	client.Start()

	deadline := time.Now().Add(2 * time.Second)
	for len(fw.received()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	cmds := fw.received()
	if len(cmds) != 1 {
		t.Fatalf("commands = %d, want 1", len(cmds))
	}
	if cmds[0].Action != widget.ActionScrub || cmds[0].Position == nil || *cmds[0].Position != 0.25 {
		t.Errorf("command = %+v", cmds[0])
	}
	if fw.sources[0] != widget.SourceWebSocket {
		t.Errorf("source = %q", fw.sources[0])
	}
}

func TestClient_CommandErrorIsReported(t *testing.T) {
	fw := &fakeWidget{err: errors.New("no samples to play")}
	hub := startHub(t, Options{Widget: fw})

	got := make(chan map[string]interface{}, 1)
	server := setupWebSocketServer(t, func(t *testing.T, conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"command","data":{"action":"play"}}`))
		got <- readType(t, conn, MessageTypeError)
	})
	defer server.Close()

	conn := dialWebSocket(t, server)
	client := NewClient(hub, conn)
	client.Start()

	select {
	case data := <-got:
		if data["action"] != "play" || data["message"] != "no samples to play" {
			t.Errorf("error data = %v", data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("error not received")
	}
}

func TestClient_CommandsAreThrottled(t *testing.T) {
	fw := &fakeWidget{}
	hub := startHub(t, Options{Widget: fw, CommandRate: 0.001, CommandBurst: 2})

	got := make(chan map[string]interface{}, 1)
	server := setupWebSocketServer(t, func(t *testing.T, conn *websocket.Conn) {
		for range 3 {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"command","data":{"action":"toggle"}}`))
		}
		got <- readType(t, conn, MessageTypeError)
	})
	defer server.Close()

	conn := dialWebSocket(t, server)
	client := NewClient(hub, conn)
	client.Start()

	select {
	case data := <-got:
		if data["message"] != "too many commands" {
			t.Errorf("error data = %v", data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("throttle error not received")
	}
	if n := len(fw.received()); n != 2 {
		t.Errorf("commands executed = %d, want burst of 2", n)
	}
}

func TestClient_InvalidMessage(t *testing.T) {
	hub := startHub(t, Options{})

	got := make(chan map[string]interface{}, 1)
	server := setupWebSocketServer(t, func(t *testing.T, conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
		got <- readType(t, conn, MessageTypeError)
	})
	defer server.Close()

	conn := dialWebSocket(t, server)
	client := NewClient(hub, conn)
	client.Start()

	select {
	case data := <-got:
		if data["message"] != "invalid message" {
			t.Errorf("error data = %v", data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("error not received")
	}
}

func TestClient_UnregistersOnClose(t *testing.T) {
	hub := NewHub(Options{})

	server := setupWebSocketServer(t, func(t *testing.T, conn *websocket.Conn) {
		_ = conn.Close()
	})
	defer server.Close()

	conn := dialWebSocket(t, server)
	client := NewClient(hub, conn)
	go client.readPump()

	select {
	case c := <-hub.Unregister:
		if c != client {
			t.Error("unexpected client unregistered")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("client not unregistered after connection close")
	}
}

func TestClient_ReadPumpExitsWhenHubStopped(t *testing.T) {
	hub := NewHub(Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = hub.RunWithContext(ctx)

	server := setupWebSocketServer(t, func(t *testing.T, conn *websocket.Conn) {
		_ = conn.Close()
	})
	defer server.Close()

	conn := dialWebSocket(t, server)
	client := NewClient(hub, conn)

	done := make(chan struct{})
	go func() {
		client.readPump()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("readPump blocked unregistering from a stopped hub")
	}
}
