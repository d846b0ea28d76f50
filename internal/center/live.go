package center

import (
	"context"
	"net/http"
	"strings"

	"github.com/dukerupert/washdesk/internal/websocket"
)

// WebSocketURL derives the /ws endpoint from an http(s) base URL.
func WebSocketURL(baseURL string) string {
	u := strings.TrimRight(baseURL, "/") + "/ws"
	switch {
	case strings.HasPrefix(u, "https://"):
		return "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		return "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u
}

// Subscribe feeds real-time events into the controller until ctx is
// cancelled or the server closes the connection.
func (c *Controller) Subscribe(ctx context.Context, wsURL, token string) error {
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	return websocket.Listen(ctx, wsURL, header, c.HandleEvent)
}
