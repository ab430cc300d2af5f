package main

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
	wsMaxMessage = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// GET /api/sessions/{id}/ws: the client sends actions as JSON objects with a
// "type" field, the server pushes every session notification and one "ack"
// per action.
func (s *Server) handleSessionSocket(w http.ResponseWriter, r *http.Request) {
	game := s.store.GetGame(r.PathValue("id"))
	if game == nil {
		jsonError(w, "Partie introuvable", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied.
		log.Printf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	c := s.sse.Register(game.ID)
	c.send(stateEvent(game))

	done := make(chan struct{})
	go writePump(conn, c, done)

	readPump(conn, func(a Action) {
		if !s.moveRL.allow(clientKey(r)) {
			c.send(ackEvent(a, false, "Trop de requêtes, réessayez plus tard"))
			return
		}
		handled, err := game.Apply(a)
		msg := ""
		if err != nil {
			_, msg = actionError(err)
		}
		c.send(ackEvent(a, handled, msg))
	})

	s.sse.Unregister(c)
	<-done
}

func ackEvent(a Action, handled bool, errMsg string) string {
	evt := map[string]any{"type": "ack", "action": a.Type, "handled": handled}
	if errMsg != "" {
		evt["error"] = errMsg
	}
	data, _ := json.Marshal(evt)
	return string(data)
}

// readPump decodes actions until the connection fails or closes.
func readPump(conn *websocket.Conn, apply func(Action)) {
	conn.SetReadLimit(wsMaxMessage)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		var a Action
		if err := conn.ReadJSON(&a); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket read: %v", err)
			}
			return
		}
		apply(a)
	}
}

// writePump is the only writer on conn. It stops when the subscriber channel
// is closed or a write fails.
func writePump(conn *websocket.Conn, c *client, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.ch:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				conn.Close()
				// Drain until Unregister closes the channel.
				for range c.ch {
				}
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				for range c.ch {
				}
				return
			}
		}
	}
}
