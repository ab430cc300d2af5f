package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"
)

const (
	clientChannelBuffer = 32
	sseHeartbeat        = 30 * time.Second
)

// client is one subscriber to a session, over SSE or WebSocket.
type client struct {
	ch        chan string
	sessionID string
}

// Broadcaster fans session events out to subscribers.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		clients: make(map[*client]struct{}),
	}
}

// Register adds a subscriber for a session and returns it.
func (b *Broadcaster) Register(sessionID string) *client {
	c := &client{
		ch:        make(chan string, clientChannelBuffer),
		sessionID: sessionID,
	}
	b.mu.Lock()
	b.clients[c] = struct{}{}
	b.mu.Unlock()
	return c
}

// Unregister removes a subscriber and closes its channel.
func (b *Broadcaster) Unregister(c *client) {
	b.mu.Lock()
	if _, ok := b.clients[c]; ok {
		delete(b.clients, c)
		close(c.ch)
	}
	b.mu.Unlock()
}

// Broadcast sends a message to every subscriber of a session. Slow
// subscribers whose buffer is full miss the message.
func (b *Broadcaster) Broadcast(sessionID, data string) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for c := range b.clients {
		if c.sessionID == sessionID {
			select {
			case c.ch <- data:
			default:
			}
		}
	}
}

// Publish encodes evt as JSON and broadcasts it.
func (b *Broadcaster) Publish(sessionID string, evt map[string]any) {
	data, err := json.Marshal(evt)
	if err != nil {
		log.Printf("encode %v event: %v", evt["type"], err)
		return
	}
	b.Broadcast(sessionID, string(data))
}

// ClientCount returns the number of subscribers of a session.
func (b *Broadcaster) ClientCount(sessionID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := 0
	for c := range b.clients {
		if c.sessionID == sessionID {
			n++
		}
	}
	return n
}

// send queues a message for one subscriber without blocking.
func (c *client) send(data string) bool {
	select {
	case c.ch <- data:
		return true
	default:
		return false
	}
}

// ServeSSE streams the events of a session until the request ends.
func (b *Broadcaster) ServeSSE(w http.ResponseWriter, r *http.Request, sessionID string, onConnect func(c *client)) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming non supporté", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	c := b.Register(sessionID)
	defer b.Unregister(c)

	if onConnect != nil {
		onConnect(c)
	}

	ticker := time.NewTicker(sseHeartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-c.ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprintf(w, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}
