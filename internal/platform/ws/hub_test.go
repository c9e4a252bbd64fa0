package ws

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/rs/zerolog"
)

func newTestHub() *Hub {
	return NewHub(zerolog.New(os.Stderr))
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := newTestHub()
	client := &Client{ID: "c1", Send: make(chan []byte, 8)}

	hub.Register(client)
	if hub.ClientCount() != 1 {
		t.Fatalf("expected 1 client, got %d", hub.ClientCount())
	}

	hub.Unregister(client)
	if hub.ClientCount() != 0 {
		t.Fatalf("expected 0 clients, got %d", hub.ClientCount())
	}
	if _, open := <-client.Send; open {
		t.Error("expected Send channel to be closed")
	}
}

func TestHub_UnregisterTwiceIsSafe(t *testing.T) {
	hub := newTestHub()
	client := &Client{ID: "c1", Send: make(chan []byte, 8)}
	hub.Register(client)
	hub.Unregister(client)
	hub.Unregister(client) // must not panic on closed channel
}

func TestHub_BroadcastReachesAllClients(t *testing.T) {
	hub := newTestHub()
	a := &Client{ID: "a", Send: make(chan []byte, 8)}
	b := &Client{ID: "b", Send: make(chan []byte, 8)}
	hub.Register(a)
	hub.Register(b)

	hub.Broadcast(NewEvent("queue.updated", "queue", "entry-1"))

	for _, client := range []*Client{a, b} {
		select {
		case raw := <-client.Send:
			var evt Event
			if err := json.Unmarshal(raw, &evt); err != nil {
				t.Fatalf("unmarshal event: %v", err)
			}
			if evt.Type != "queue.updated" || evt.Resource != "queue" {
				t.Errorf("unexpected event: %+v", evt)
			}
		default:
			t.Errorf("client %s did not receive the event", client.ID)
		}
	}
}

func TestHub_BroadcastSkipsFullBuffers(t *testing.T) {
	hub := newTestHub()
	full := &Client{ID: "full", Send: make(chan []byte)} // no buffer, nobody reading
	hub.Register(full)

	// Must not block.
	hub.Broadcast(NewEvent("queue.updated", "queue", ""))
}

func TestNewEvent_SetsTimestamp(t *testing.T) {
	evt := NewEvent("appointment.updated", "appointment", "x")
	if evt.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
}
