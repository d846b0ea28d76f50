package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
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
	hub.Register(c1)
	hub.Register(c2)

	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	hub.Unregister(c1)
	hub.Unregister(c1) // double unregister must not panic
	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("expected 1 client after unregister, got %d", got)
	}

	hub.Unregister(c2)
	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestBroadcastEnvelope(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub)
	c2 := mockClient(hub)
	hub.Register(c1)
	hub.Register(c2)

	hub.Broadcast(NewEvent(EventNewNotification, map[string]any{
		"notification": map[string]any{"id": "n-1", "title": "New booking"},
	}))

	for _, c := range []*Client{c1, c2} {
		select {
		case data := <-c.send:
			var got struct {
				Event string `json:"event"`
				Data  struct {
					Notification struct {
						ID string `json:"id"`
					} `json:"notification"`
				} `json:"data"`
			}
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got.Event != EventNewNotification {
				t.Errorf("event = %q, want %q", got.Event, EventNewNotification)
			}
			if got.Data.Notification.ID != "n-1" {
				t.Errorf("notification id = %q, want %q", got.Data.Notification.ID, "n-1")
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatal("timeout waiting for message")
		}
	}

	hub.Unregister(c1)
	hub.Unregister(c2)
}

func TestBroadcastFullBuffer(t *testing.T) {
	hub := NewHub(slog.Default())

	c := mockClient(hub)
	hub.Register(c)

	for i := 0; i < sendBufferSize; i++ {
		hub.Broadcast(NewEvent("fill", i))
	}
	// This should drop the message, not block
	hub.Broadcast(NewEvent("dropped", nil))

	count := 0
	for len(c.send) > 0 {
		<-c.send
		count++
	}
	if count != sendBufferSize {
		t.Errorf("expected %d messages, got %d", sendBufferSize, count)
	}

	hub.Unregister(c)
}

func TestConcurrentAccess(t *testing.T) {
	hub := NewHub(slog.Default())
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := mockClient(hub)
			hub.Register(c)
			hub.Broadcast(NewEvent("concurrent", nil))
			hub.Unregister(c)
		}()
	}
	wg.Wait()

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("expected 0 clients after concurrent test, got %d", got)
	}
}

func TestListenReceivesBroadcast(t *testing.T) {
	hub := NewHub(slog.Default())
	srv := httptest.NewServer(HandleWebSocket(hub, nil))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	received := make(chan string, 1)
	done := make(chan error, 1)
	go func() {
		done <- Listen(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil, func(event string, data json.RawMessage) {
			received <- event + " " + string(data)
		})
	}()

	// Wait for the listener to register before broadcasting.
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("listener never connected")
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.Broadcast(NewEvent(EventNewNotification, map[string]string{"id": "n-9"}))

	select {
	case got := <-received:
		want := EventNewNotification + ` {"id":"n-9"}`
		if got != want {
			t.Errorf("received %q, want %q", got, want)
		}
	case <-ctx.Done():
		t.Fatal("timeout waiting for event")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("listen returned %v after cancel, want nil", err)
	}
}
