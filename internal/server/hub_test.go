package server

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/kuchipudi/internal/engine"
)

func dialHub(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial hub: %v", err)
	}
	return conn
}

func TestHub_PublishDeliversToSubscriber(t *testing.T) {
	hub := NewHub()
	mux := httptest.NewServer(hub)
	defer mux.Close()

	conn := dialHub(t, mux)
	defer conn.Close()

	// Give the subscriber goroutine time to register.
	deadline := time.Now().Add(time.Second)
	for hub.Count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hub.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", hub.Count())
	}

	hub.Publish(engine.NewGestureEvent("thumbs_up", 0.9, 1, 1.0))

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read message: %v", err)
	}
	if !strings.Contains(string(msg), "thumbs_up") {
		t.Errorf("message = %s, want it to contain thumbs_up", msg)
	}
}

func TestHub_DropsSubscriberWithFullOutbox(t *testing.T) {
	hub := NewHub()
	mux := httptest.NewServer(hub)
	defer mux.Close()

	conn := dialHub(t, mux)
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for hub.Count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	// Publish far more events than the outbox can hold without this
	// subscriber ever reading, forcing it to be dropped.
	for i := 0; i < outboxSize*4; i++ {
		hub.Publish(engine.NewGestureEvent("fist", 0.9, 1, float64(i)))
	}

	deadline = time.Now().Add(time.Second)
	for hub.Count() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hub.Count() != 0 {
		t.Errorf("Count() = %d, want 0 after overflowing the outbox", hub.Count())
	}
}
