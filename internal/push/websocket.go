package push

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

// WebSocketTransport consumes push events over one WebSocket connection.
// Messages are JSON envelopes of the form {"event": ..., "data": ...}.
// Params: endpoint URL, dialer, and logger for malformed frames.
// Returns: long-lived push transport.
type WebSocketTransport struct {
	url    string
	dialer *websocket.Dialer
	logger *slog.Logger
}

// NewWebSocketTransport creates the WebSocket transport.
// Params: ws(s) endpoint URL and logger.
// Returns: initialized transport.
func NewWebSocketTransport(url string, logger *slog.Logger) *WebSocketTransport {
	return &WebSocketTransport{
		url:    url,
		dialer: websocket.DefaultDialer,
		logger: logger,
	}
}

// wsEnvelope is one framed push event on the socket.
type wsEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// wsConn closes the socket and suppresses late callbacks.
type wsConn struct {
	conn   *websocket.Conn
	closed atomic.Bool
}

// Close terminates the socket; the read loop exits silently afterwards.
// Params: none.
// Returns: socket close error.
func (c *wsConn) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.conn.Close()
}

// Open dials the socket and starts the read loop.
// Params: dial context, bearer token, and event/error callbacks.
// Returns: socket closer or dial error.
func (t *WebSocketTransport) Open(ctx context.Context, token string, onEvent func(Event), onError func(error)) (io.Closer, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	socket, _, err := t.dialer.DialContext(ctx, t.url, header)
	if err != nil {
		return nil, fmt.Errorf("dial push websocket: %w", err)
	}

	conn := &wsConn{conn: socket}
	go func() {
		for {
			_, payload, readErr := socket.ReadMessage()
			if readErr != nil {
				if conn.closed.Load() {
					return
				}
				onError(fmt.Errorf("push websocket read: %w", readErr))
				return
			}
			var envelope wsEnvelope
			if err := json.Unmarshal(payload, &envelope); err != nil {
				if t.logger != nil {
					t.logger.Warn("push websocket frame decode failed", "error", err.Error())
				}
				continue
			}
			onEvent(Event{Name: envelope.Event, Data: envelope.Data})
		}
	}()
	return conn, nil
}
