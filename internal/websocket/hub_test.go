package websocket

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
)

func testHub() *Hub {
	return NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testClient() *Client {
	return &Client{send: make(chan []byte, sendBufferSize)}
}

func TestNewMessageType(t *testing.T) {
	msg := NewMessage("item", "created", "abc", nil)
	if msg.Type != "item_created" {
		t.Errorf("type = %q", msg.Type)
	}
}

func TestBroadcastReachesClients(t *testing.T) {
	hub := testHub()
	c1, c2 := testClient(), testClient()
	hub.Register(c1)
	hub.Register(c2)

	if hub.ClientCount() != 2 {
		t.Fatalf("clients = %d", hub.ClientCount())
	}

	hub.Broadcast(NewMessage("item", "created", "abc", nil))

	for _, c := range []*Client{c1, c2} {
		select {
		case data := <-c.send:
			var msg Message
			if err := json.Unmarshal(data, &msg); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if msg.ID != "abc" || msg.Entity != "item" {
				t.Errorf("msg = %+v", msg)
			}
		default:
			t.Fatal("client did not receive the broadcast")
		}
	}
}

func TestBroadcastDropsWhenBufferFull(t *testing.T) {
	hub := testHub()
	c := &Client{send: make(chan []byte)} // unbuffered, nothing reading
	hub.Register(c)

	// Must not block.
	hub.Broadcast(NewMessage("item", "created", "abc", nil))
}

func TestUnregister(t *testing.T) {
	hub := testHub()
	c := testClient()
	hub.Register(c)
	hub.Unregister(c)

	if hub.ClientCount() != 0 {
		t.Error("client still registered")
	}
	if _, ok := <-c.send; ok {
		t.Error("send channel should be closed")
	}
	// Unregistering twice is harmless.
	hub.Unregister(c)
}

func TestShutdownRefusesNewClients(t *testing.T) {
	hub := testHub()
	c := testClient()
	hub.Register(c)
	hub.Shutdown()

	if hub.ClientCount() != 0 {
		t.Error("shutdown must disconnect clients")
	}
	late := testClient()
	hub.Register(late)
	if hub.ClientCount() != 0 {
		t.Error("shutdown hub must refuse registrations")
	}
}
