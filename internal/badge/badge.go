package badge

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const refreshTimeout = 5 * time.Second

// CountFunc reads the server-side unread notification count.
// Params: context with refresh deadline.
// Returns: unread count or read error.
type CountFunc func(ctx context.Context) (int, error)

// Badge holds the unread count derived from server state.
// The core never computes the value; it only invalidates, and the badge
// refreshes from the query layer in the background. Failed refreshes keep
// the previous value.
// Params: count reader, logger, and coalescing refresh channel.
// Returns: unread badge value for the application shell.
type Badge struct {
	mu      sync.RWMutex
	count   int
	fetch   CountFunc
	logger  *slog.Logger
	refresh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// New creates the badge and starts its refresh worker.
// Params: count reader and logger.
// Returns: running badge; callers must Close it on teardown.
func New(fetch CountFunc, logger *slog.Logger) *Badge {
	b := &Badge{
		fetch:   fetch,
		logger:  logger,
		refresh: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go b.run()
	return b
}

// Invalidate marks the count stale and schedules a background refresh.
// Pending refresh requests coalesce into one.
// Params: none.
// Returns: none; never blocks the caller.
func (b *Badge) Invalidate() {
	select {
	case b.refresh <- struct{}{}:
	default:
	}
}

// Count returns the last successfully fetched unread count.
// Params: none.
// Returns: unread count value.
func (b *Badge) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.count
}

// Close stops the refresh worker.
// Params: none.
// Returns: nil; idempotent.
func (b *Badge) Close() error {
	b.once.Do(func() {
		close(b.done)
	})
	return nil
}

// run serves coalesced refresh requests until Close.
// Params: none.
// Returns: none.
func (b *Badge) run() {
	for {
		select {
		case <-b.done:
			return
		case <-b.refresh:
			b.refreshOnce()
		}
	}
}

// refreshOnce fetches the count with a bounded deadline.
// Params: none.
// Returns: none; failures log and keep the previous value.
func (b *Badge) refreshOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	count, err := b.fetch(ctx)
	if err != nil {
		if b.logger != nil {
			b.logger.Warn("unread count refresh failed", "error", err.Error())
		}
		return
	}

	b.mu.Lock()
	b.count = count
	b.mu.Unlock()
}
