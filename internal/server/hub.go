package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/ayusman/kuchipudi/internal/engine"
)

// outboxSize bounds the number of pending events queued per subscriber.
// A subscriber reading slower than the engine produces events gets
// dropped rather than let the broadcaster block on it.
const outboxSize = 32

var hubUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// subscriber is one connected WebSocket client with its own send
// goroutine and bounded outbox. Publish never blocks on a subscriber:
// a full outbox means the subscriber is dropped instead of stalling
// every other subscriber behind it.
type subscriber struct {
	conn   *websocket.Conn
	outbox chan []byte
}

// Hub broadcasts engine events to any number of WebSocket subscribers.
// It adapts the landmark broadcast loop's one-goroutine-fans-out-to-many
// shape into a per-subscriber send goroutine with backpressure, so a
// stalled client cannot hold up delivery to the rest.
type Hub struct {
	mu   sync.RWMutex
	subs map[*subscriber]struct{}
}

// NewHub creates an empty event hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[*subscriber]struct{})}
}

// Publish encodes an engine event as JSON and fans it out to every
// connected subscriber. A subscriber whose outbox is full is dropped.
func (h *Hub) Publish(evt engine.Event) {
	payload, err := json.Marshal(evt)
	if err != nil {
		log.Printf("hub: marshal event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for s := range h.subs {
		select {
		case s.outbox <- payload:
		default:
			go h.drop(s)
		}
	}
}

// drop removes a subscriber whose outbox was full and closes its
// connection. Run in its own goroutine so Publish's read lock is never
// held across a map mutation.
func (h *Hub) drop(s *subscriber) {
	h.mu.Lock()
	_, ok := h.subs[s]
	delete(h.subs, s)
	h.mu.Unlock()
	if !ok {
		return
	}
	close(s.outbox)
	s.conn.Close()
}

// ServeHTTP upgrades the connection and registers it as a subscriber
// until the client disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := hubUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("hub: websocket upgrade error: %v", err)
		return
	}

	s := &subscriber{conn: conn, outbox: make(chan []byte, outboxSize)}

	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()

	go s.sendLoop()

	// Read and discard; this keeps the connection's read side drained
	// so the peer's close frames are observed and the loop exits.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	if _, ok := h.subs[s]; ok {
		delete(h.subs, s)
		close(s.outbox)
	}
	h.mu.Unlock()
	conn.Close()
}

// sendLoop drains the outbox to the WebSocket connection until the
// outbox is closed (subscriber dropped or disconnected).
func (s *subscriber) sendLoop() {
	for msg := range s.outbox {
		if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// Count returns the number of currently connected subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
