package push

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
)

// defaultEventName applies when a stream block carries no event field.
const defaultEventName = "message"

// SSETransport consumes a server-sent-events stream with bearer auth.
// Params: stream URL and HTTP client without an overall timeout.
// Returns: long-lived push transport.
type SSETransport struct {
	url    string
	client *http.Client
}

// NewSSETransport creates the SSE transport.
// Params: event-stream endpoint URL.
// Returns: initialized transport.
func NewSSETransport(url string) *SSETransport {
	// The stream is long-lived by contract; only dialing gets a deadline via
	// the caller's context, never the response body.
	return &SSETransport{
		url:    url,
		client: &http.Client{},
	}
}

// sseConn closes the response stream and suppresses late callbacks.
type sseConn struct {
	body   io.Closer
	cancel context.CancelFunc
	closed atomic.Bool
}

// Close terminates the stream; subsequent reader errors are swallowed.
// Params: none.
// Returns: body close error.
func (c *sseConn) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	c.cancel()
	return c.body.Close()
}

// Open dials the event stream and starts the reader goroutine.
// Params: dial context, bearer token, and event/error callbacks.
// Returns: stream closer or dial/status error.
func (t *SSETransport) Open(ctx context.Context, token string, onEvent func(Event), onError func(error)) (io.Closer, error) {
	streamCtx, cancel := context.WithCancel(context.Background())
	request, err := http.NewRequestWithContext(streamCtx, http.MethodGet, t.url, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("build event-stream request: %w", err)
	}
	request.Header.Set("Authorization", "Bearer "+token)
	request.Header.Set("Accept", "text/event-stream")
	request.Header.Set("Cache-Control", "no-cache")

	// Honor the dial context without binding the stream lifetime to it.
	dialDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-dialDone:
		}
	}()

	response, err := t.client.Do(request)
	close(dialDone)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("open event stream: %w", err)
	}
	if response.StatusCode != http.StatusOK {
		_ = response.Body.Close()
		cancel()
		return nil, fmt.Errorf("event stream: unexpected status %d", response.StatusCode)
	}

	conn := &sseConn{body: response.Body, cancel: cancel}
	go func() {
		err := readEventStream(response.Body, onEvent)
		if conn.closed.Load() {
			return
		}
		if err == nil {
			err = errors.New("event stream closed by server")
		}
		onError(err)
	}()
	return conn, nil
}

// readEventStream parses event-stream blocks and dispatches them in order.
// Params: stream reader and event callback.
// Returns: reader error, nil on clean EOF.
func readEventStream(reader io.Reader, onEvent func(Event)) error {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)

	name := ""
	var data []string
	flush := func() {
		if len(data) == 0 && name == "" {
			return
		}
		eventName := name
		if eventName == "" {
			eventName = defaultEventName
		}
		onEvent(Event{Name: eventName, Data: []byte(strings.Join(data, "\n"))})
		name = ""
		data = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, ":"):
			// comment/heartbeat line
		case strings.HasPrefix(line, "event:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		default:
			// id:/retry: and unknown fields are not used by this stream
		}
	}
	return scanner.Err()
}
