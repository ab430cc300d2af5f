package main

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var evt map[string]any
	if err := conn.ReadJSON(&evt); err != nil {
		t.Fatalf("read event: %v", err)
	}
	return evt
}

func TestSessionSocket(t *testing.T) {
	srv := newTestServer(t)
	st := createSession(t, srv)

	ts := httptest.NewServer(srv)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/sessions/" + st.ID + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if evt := readEvent(t, conn); evt["type"] != "session_state" {
		t.Fatalf("expected session_state first, got %v", evt)
	}

	if err := conn.WriteJSON(Action{Type: "key", Key: "t"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	evt := readEvent(t, conn)
	if evt["type"] != "cell_change" || evt["value"] != "T" {
		t.Fatalf("expected cell_change T, got %v", evt)
	}
	evt = readEvent(t, conn)
	if evt["type"] != "ack" || evt["handled"] != true {
		t.Fatalf("expected handled ack, got %v", evt)
	}

	if err := conn.WriteJSON(Action{Type: "guess", Row: 1, Col: 0, Value: "A"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	evt = readEvent(t, conn)
	if evt["type"] != "ack" || evt["error"] == nil {
		t.Fatalf("expected ack carrying an error, got %v", evt)
	}

	if got := guessAt(srv.store.GetGame(st.ID).State(), 0, 0); got != "T" {
		t.Fatalf("expected T at (0,0), got %q", got)
	}
}

func TestSessionSocketUnknownSession(t *testing.T) {
	srv := newTestServer(t)
	w := do(t, srv, "GET", "/api/sessions/nonexistent/ws", "")
	if w.Code != 404 {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
