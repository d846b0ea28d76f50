package center

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/washdesk/internal/model"
)

func TestWebSocketURL(t *testing.T) {
	tests := map[string]string{
		"http://localhost:8080":      "ws://localhost:8080/ws",
		"https://admin.example.com/": "wss://admin.example.com/ws",
	}
	for in, want := range tests {
		if got := WebSocketURL(in); got != want {
			t.Errorf("WebSocketURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSubscribePrependsPushedNotifications(t *testing.T) {
	authCh := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authCh <- r.Header.Get("Authorization")
		conn, err := ws.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.CloseNow()
		msg := `{"event":"new_notification","data":{"notification":{"id":"live-1","type":"PAYMENT","title":"Payment received","isRead":false,"createdAt":"2026-10-19T14:59:00Z"}}}`
		conn.Write(r.Context(), ws.MessageText, []byte(msg))
		conn.Close(ws.StatusNormalClosure, "")
	}))
	defer srv.Close()

	c, _ := loadedController(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Subscribe(ctx, WebSocketURL(srv.URL), "tok"); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if gotAuth := <-authCh; gotAuth != "Bearer tok" {
		t.Errorf("Authorization = %q", gotAuth)
	}

	visible := c.Visible()
	if len(visible) != 4 || visible[0].ID != "live-1" || visible[0].Type != model.TypePayment {
		t.Errorf("visible[0] = %+v", visible[0])
	}
}
