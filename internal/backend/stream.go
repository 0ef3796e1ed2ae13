package backend

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/profissa/profissa/internal/models/dto"
)

// Subscribe opens the agenda update stream. The returned channel is closed
// when ctx is done or the connection drops; there is no reconnect.
func (c *Client) Subscribe(ctx context.Context) (<-chan dto.StatusEvent, error) {
	tok := c.bearer()
	if tok == "" {
		return nil, ErrUnauthorized
	}

	u, err := url.Parse(c.baseURL + "/appointments/stream")
	if err != nil {
		return nil, fmt.Errorf("stream url: %w", err)
	}
	u.Scheme = strings.Replace(u.Scheme, "http", "ws", 1)
	u.RawQuery = url.Values{"token": {tok}}.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial stream: %w", err)
	}

	out := make(chan dto.StatusEvent, 8)
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		_ = conn.Close()
	}()
	go func() {
		defer close(out)
		defer close(done)
		for {
			var ev dto.StatusEvent
			if err := conn.ReadJSON(&ev); err != nil {
				if ctx.Err() == nil {
					log.Printf("backend: stream closed: %v", err)
				}
				return
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
