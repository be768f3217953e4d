package push

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"toastd/internal/domain"
)

// Named transport events.
const (
	// EventInit confirms the push connection is live.
	EventInit = "INIT"
	// EventNotification carries one JSON-serialized alarm payload.
	EventNotification = "NOTIFICATION"
)

// Event is one named record delivered by a push transport.
// Params: event name and raw data bytes.
// Returns: transport-agnostic event unit.
type Event struct {
	Name string
	Data []byte
}

// Transport opens one long-lived push stream for a session token.
// Params: dial context, bearer token, and event/error callbacks.
// Returns: connection closer or open error.
type Transport interface {
	Open(ctx context.Context, token string, onEvent func(Event), onError func(error)) (io.Closer, error)
}

// AlarmSink receives normalized alarms from the connection manager.
// Params: canonical alarm record.
// Returns: none; delivery order follows transport order.
type AlarmSink interface {
	HandleAlarm(alarm domain.Alarm)
}

// Invalidator signals staleness of externally-owned caches.
// Params: none.
// Returns: none; both signals are fire-and-forget.
type Invalidator interface {
	InvalidateUnreadCount()
	InvalidateAlarmList()
}

// Manager owns the single live push connection per authenticated session.
// Params: transport, alarm sink, invalidator, logger, and error callback.
// Returns: connection lifecycle owner; no other component touches the handle.
type Manager struct {
	mu          sync.Mutex
	transport   Transport
	sink        AlarmSink
	invalidator Invalidator
	logger      *slog.Logger
	onError     func(error)
	conn        io.Closer
}

// NewManager creates the connection manager.
// Params: transport, sink, invalidator, logger, and outward error callback.
// Returns: initialized manager with no live connection.
func NewManager(transport Transport, sink AlarmSink, invalidator Invalidator, logger *slog.Logger, onError func(error)) *Manager {
	return &Manager{
		transport:   transport,
		sink:        sink,
		invalidator: invalidator,
		logger:      logger,
		onError:     onError,
	}
}

// Connect opens the push connection bound to the session token.
// Connecting is attempted only for an authenticated caller: a blank token or
// principal type is a no-op, not an error. An existing connection is closed
// first so a token change never leaks the previous one.
// Params: dial context, session token, and principal type.
// Returns: transport open error.
func (m *Manager) Connect(ctx context.Context, token, principal string) error {
	if token == "" || principal == "" {
		m.logger.Debug("push connect skipped for unauthenticated caller")
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn != nil {
		if err := m.conn.Close(); err != nil {
			m.logger.Warn("previous push connection close failed", "error", err.Error())
		}
		m.conn = nil
	}

	conn, err := m.transport.Open(ctx, token, m.handleEvent, m.handleError)
	if err != nil {
		return err
	}
	m.conn = conn
	m.logger.Info("push connection opened", "principal", principal)
	return nil
}

// Disconnect closes the live connection; closing twice or never-opened is a no-op.
// Params: none.
// Returns: none.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn == nil {
		return
	}
	if err := m.conn.Close(); err != nil {
		m.logger.Warn("push connection close failed", "error", err.Error())
	}
	m.conn = nil
}

// Connected reports whether a live connection is held.
// Params: none.
// Returns: true when a connection handle exists.
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn != nil
}

// handleEvent routes one transport event; it never panics the stream.
// Params: named transport event.
// Returns: none.
func (m *Manager) handleEvent(event Event) {
	switch event.Name {
	case EventInit:
		m.logger.Info("push connection confirmed by server")
	case EventNotification:
		m.handleNotification(event.Data)
	default:
		m.logger.Debug("push event ignored", "event", event.Name)
	}
}

// handleNotification normalizes one payload and fans out downstream effects.
// Normalization failures are logged and dropped; the connection stays open.
// Params: raw NOTIFICATION payload bytes.
// Returns: none.
func (m *Manager) handleNotification(data []byte) {
	alarm, err := domain.Normalize(data)
	if err != nil {
		if errors.Is(err, domain.ErrNoType) || errors.Is(err, domain.ErrUnknownType) {
			m.logger.Warn("push event dropped", "error", err.Error())
		} else {
			m.logger.Warn("push event decode failed", "error", err.Error())
		}
		return
	}

	// Both cache invalidations fire regardless of toast delivery.
	m.invalidator.InvalidateUnreadCount()
	m.invalidator.InvalidateAlarmList()
	m.sink.HandleAlarm(alarm)
}

// handleError surfaces a transport-level error outward.
// No recovery is attempted here; reconnect policy belongs to the caller.
// Params: transport error.
// Returns: none.
func (m *Manager) handleError(err error) {
	m.logger.Error("push transport error", "error", err.Error())
	if m.onError != nil {
		m.onError(err)
	}
}
