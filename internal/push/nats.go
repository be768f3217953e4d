package push

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go"
)

// NATSTransport consumes push events from an internal NATS subject.
// Deployments that fan notifications through the platform bus instead of an
// edge SSE endpoint use this transport; the session token authenticates the
// connection. An INIT event is synthesized once the subscription is live.
// Params: server URLs, per-user subject, and logger.
// Returns: long-lived push transport.
type NATSTransport struct {
	urls    []string
	subject string
	logger  *slog.Logger
}

// NewNATSTransport creates the NATS transport.
// Params: server URL list, subject to subscribe, and logger.
// Returns: initialized transport.
func NewNATSTransport(urls []string, subject string, logger *slog.Logger) *NATSTransport {
	return &NATSTransport{
		urls:    urls,
		subject: subject,
		logger:  logger,
	}
}

// natsConn drains the subscription and closes the connection.
type natsConn struct {
	nc  *nats.Conn
	sub *nats.Subscription
}

// Close stops the subscription and closes the connection.
// Params: none.
// Returns: drain error.
func (c *natsConn) Close() error {
	if c.sub != nil {
		if err := c.sub.Drain(); err != nil {
			c.nc.Close()
			return err
		}
	}
	c.nc.Close()
	return nil
}

// Open connects, subscribes, and synthesizes the INIT confirmation.
// Params: dial context (unused beyond option defaults), token, callbacks.
// Returns: subscription closer or connect/subscribe error.
func (t *NATSTransport) Open(_ context.Context, token string, onEvent func(Event), onError func(error)) (io.Closer, error) {
	options := []nats.Option{
		nats.Token(token),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				onError(fmt.Errorf("push nats disconnected: %w", err))
			}
		}),
	}
	nc, err := nats.Connect(strings.Join(t.urls, ","), options...)
	if err != nil {
		return nil, fmt.Errorf("connect push nats: %w", err)
	}

	sub, err := nc.Subscribe(t.subject, func(message *nats.Msg) {
		onEvent(Event{Name: EventNotification, Data: message.Data})
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("subscribe %q: %w", t.subject, err)
	}
	if t.logger != nil {
		t.logger.Debug("push nats subscription live", "subject", t.subject)
	}
	onEvent(Event{Name: EventInit})
	return &natsConn{nc: nc, sub: sub}, nil
}
