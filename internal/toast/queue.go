package toast

import (
	"sync"
	"time"

	"toastd/internal/domain"

	"github.com/google/uuid"
)

// DefaultCapacity bounds the number of live toasts.
const DefaultCapacity = 4

// Entry is one live toast owned by the queue.
// Params: queue-assigned id, descriptor fields, and insertion timestamp.
// Returns: value copied out to consumers; never mutated after insertion.
type Entry struct {
	ID string `json:"id"`
	domain.ToastDescriptor
	CreatedAt time.Time `json:"createdAt"`
}

// Queue is the bounded, ordered toast collection with single-owner mutation.
// Params: capacity, clock function, and watcher channels.
// Returns: FIFO store; only Add/Remove/Clear mutate it.
type Queue struct {
	mu       sync.Mutex
	capacity int
	now      func() time.Time
	newID    func() string
	entries  []Entry
	watchers []chan struct{}
}

// NewQueue creates a toast queue.
// Params: capacity (DefaultCapacity when <=0) and now function (time.Now when nil).
// Returns: empty queue.
func NewQueue(capacity int, now func() time.Time) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Queue{
		capacity: capacity,
		now:      now,
		newID:    uuid.NewString,
	}
}

// Add appends one toast, silently evicting the oldest beyond capacity.
// Params: toast descriptor from classification or an ad-hoc caller.
// Returns: created entry with fresh id and timestamp, plus evicted entry ids
// so the caller can cancel their lifecycles.
func (q *Queue) Add(descriptor domain.ToastDescriptor) (Entry, []string) {
	entry := Entry{
		ID:              q.newID(),
		ToastDescriptor: descriptor,
		CreatedAt:       q.now(),
	}

	q.mu.Lock()
	q.entries = append(q.entries, entry)
	var evicted []string
	if overflow := len(q.entries) - q.capacity; overflow > 0 {
		for _, old := range q.entries[:overflow] {
			evicted = append(evicted, old.ID)
		}
		q.entries = append([]Entry(nil), q.entries[overflow:]...)
	}
	q.notifyLocked()
	q.mu.Unlock()
	return entry, evicted
}

// Remove deletes the entry with the given id; unknown ids are a no-op.
// Params: entry id.
// Returns: true when an entry was removed.
func (q *Queue) Remove(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, entry := range q.entries {
		if entry.ID != id {
			continue
		}
		q.entries = append(q.entries[:i:i], q.entries[i+1:]...)
		q.notifyLocked()
		return true
	}
	return false
}

// Clear empties the collection unconditionally.
// Params: none.
// Returns: none.
func (q *Queue) Clear() {
	q.mu.Lock()
	q.entries = nil
	q.notifyLocked()
	q.mu.Unlock()
}

// List snapshots entries in insertion order, optionally filtered by position.
// Params: position filter; empty position returns everything.
// Returns: copied slice safe for concurrent readers.
func (q *Queue) List(position domain.Position) []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Entry, 0, len(q.entries))
	for _, entry := range q.entries {
		if position != "" && entry.Position != position {
			continue
		}
		out = append(out, entry)
	}
	return out
}

// Get returns one entry by id.
// Params: entry id.
// Returns: entry copy and presence flag.
func (q *Queue) Get(id string) (Entry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, entry := range q.entries {
		if entry.ID == id {
			return entry, true
		}
	}
	return Entry{}, false
}

// Len reports the number of live entries.
// Params: none.
// Returns: current entry count.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Watch registers a coalesced change signal for one consumer.
// Params: none.
// Returns: channel receiving one tick per batch of mutations.
func (q *Queue) Watch() <-chan struct{} {
	ch := make(chan struct{}, 1)
	q.mu.Lock()
	q.watchers = append(q.watchers, ch)
	q.mu.Unlock()
	return ch
}

// notifyLocked wakes watchers without blocking the mutating caller.
// Params: queue lock must be held.
// Returns: none.
func (q *Queue) notifyLocked() {
	for _, ch := range q.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
