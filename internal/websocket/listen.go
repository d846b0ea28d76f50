package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	ws "github.com/coder/websocket"
)

// inbound mirrors Event but keeps the payload raw for the caller to decode.
type inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Listen dials url and calls fn for every event received until ctx is
// cancelled or the connection drops. A cancelled context is not an error.
func Listen(ctx context.Context, url string, header http.Header, fn func(event string, data json.RawMessage)) error {
	conn, _, err := ws.Dial(ctx, url, &ws.DialOptions{HTTPHeader: header})
	if err != nil {
		return fmt.Errorf("dial %s: %w", url, err)
	}
	defer conn.CloseNow()

	for {
		_, msg, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil || ws.CloseStatus(err) == ws.StatusNormalClosure {
				return nil
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}

		var in inbound
		if err := json.Unmarshal(msg, &in); err != nil {
			continue
		}
		fn(in.Event, in.Data)
	}
}
