package websocket

import (
	"encoding/json"
	"log/slog"
	"testing"
)

// mockClient creates a Client with a send channel but no real connection.
func mockClient(hub *Hub) *Client {
	return &Client{
		hub:  hub,
		conn: nil,
		send: make(chan []byte, sendBufferSize),
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub)
	c2 := mockClient(hub)

	hub.Register(c1, 1)
	hub.Register(c2, 1)

	if got := hub.ClientCount(1); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	hub.Unregister(c1)
	if got := hub.ClientCount(1); got != 1 {
		t.Fatalf("expected 1 client after unregister, got %d", got)
	}

	hub.Unregister(c2)
	if got := hub.ClientCount(1); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestDoubleUnregister(t *testing.T) {
	hub := NewHub(slog.Default())
	c := mockClient(hub)
	hub.Register(c, 1)
	hub.Unregister(c)
	// Second unregister must not close the channel twice.
	hub.Unregister(c)
}

func TestBroadcastToScopesByUser(t *testing.T) {
	hub := NewHub(slog.Default())

	mine := mockClient(hub)
	other := mockClient(hub)
	hub.Register(mine, 1)
	hub.Register(other, 2)

	hub.BroadcastTo(1, NewMessage("grocery", "toggled", 42, nil))

	select {
	case data := <-mine.send:
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if msg.Type != "grocery_toggled" || msg.ID != 42 {
			t.Errorf("msg = %+v", msg)
		}
	default:
		t.Fatal("expected a message for user 1")
	}

	select {
	case <-other.send:
		t.Fatal("user 2 must not receive user 1's events")
	default:
	}
}

func TestBroadcastReachesAllUsers(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub)
	c2 := mockClient(hub)
	hub.Register(c1, 1)
	hub.Register(c2, 2)

	hub.Broadcast(NewMessage("backup", "running", 0, nil))

	for i, c := range []*Client{c1, c2} {
		select {
		case <-c.send:
		default:
			t.Errorf("client %d did not receive the broadcast", i+1)
		}
	}
}

func TestBroadcastToFullBufferDoesNotBlock(t *testing.T) {
	hub := NewHub(slog.Default())

	c := mockClient(hub)
	hub.Register(c, 1)

	for i := 0; i < sendBufferSize+5; i++ {
		hub.BroadcastTo(1, NewMessage("fridge", "created", int64(i), nil))
	}
	// Overflow is dropped, not deadlocked.
	if len(c.send) != sendBufferSize {
		t.Errorf("buffered = %d, want %d", len(c.send), sendBufferSize)
	}
}
