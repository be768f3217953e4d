package app

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"toastd/internal/clock"
	"toastd/internal/domain"
	"toastd/internal/toast"
)

type countingInvalidator struct {
	mu    sync.Mutex
	calls int
}

func (c *countingInvalidator) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
}

func (c *countingInvalidator) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type recordingMirror struct {
	entries chan toast.Entry
}

func (r *recordingMirror) Mirror(_ context.Context, entry toast.Entry) {
	r.entries <- entry
}

func newTestCenter(t *testing.T, mirror Mirrorer) (*Center, *toast.Queue, *toast.Controller, *countingInvalidator) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	queue := toast.NewQueue(4, nil)
	controller := toast.NewController(queue, clock.RealClock{}, logger, toast.ControllerConfig{
		SimpleDuration: time.Hour,
		ActionDuration: time.Hour,
		ExitDelay:      time.Hour,
	})
	t.Cleanup(controller.Stop)
	unread := &countingInvalidator{}
	return NewCenter(queue, controller, unread, mirror, nil, logger), queue, controller, unread
}

func TestHandleAlarmPostsClassifiedToast(t *testing.T) {
	t.Parallel()

	center, queue, _, _ := newTestCenter(t, nil)
	center.HandleAlarm(domain.Alarm{
		ID:   "alarm-1",
		Type: domain.AlarmReviewRequired,
		Payload: map[string]any{
			"userNickname": "홍길동",
		},
	})

	list := queue.List("")
	if len(list) != 1 {
		t.Fatalf("expected one toast, got %d", len(list))
	}
	entry := list[0]
	if entry.Severity != domain.SeverityWarning {
		t.Fatalf("expected warning severity, got %q", entry.Severity)
	}
	if entry.CTA == nil {
		t.Fatalf("expected review CTA on the posted toast")
	}
}

func TestHandleAlarmMirrorsAsync(t *testing.T) {
	t.Parallel()

	mirror := &recordingMirror{entries: make(chan toast.Entry, 1)}
	center, _, _, _ := newTestCenter(t, mirror)
	center.HandleAlarm(domain.Alarm{Type: domain.AlarmReviewCreated})

	select {
	case entry := <-mirror.entries:
		if entry.Message == "" {
			t.Fatalf("mirrored entry has no message")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("toast was never mirrored")
	}
}

func TestPostAndRemove(t *testing.T) {
	t.Parallel()

	center, queue, _, _ := newTestCenter(t, nil)
	entry := center.Post(domain.ToastDescriptor{Message: "직접 게시"})
	if entry.ID == "" {
		t.Fatalf("expected assigned id")
	}
	if queue.Len() != 1 {
		t.Fatalf("expected stored toast")
	}
	if !center.Remove(entry.ID) {
		t.Fatalf("expected removal")
	}
	if center.Remove(entry.ID) {
		t.Fatalf("second removal must be a no-op")
	}
}

func TestPostDropsEvictedLifecycles(t *testing.T) {
	t.Parallel()

	center, queue, controller, _ := newTestCenter(t, nil)
	first := center.Post(domain.ToastDescriptor{Message: "oldest"})
	for i := 0; i < 4; i++ {
		center.Post(domain.ToastDescriptor{Message: "filler"})
	}

	if queue.Len() != 4 {
		t.Fatalf("expected capacity-bounded queue, got %d", queue.Len())
	}
	if _, ok := queue.Get(first.ID); ok {
		t.Fatalf("expected oldest toast evicted")
	}
	if _, ok := controller.Phase(first.ID); ok {
		t.Fatalf("evicted toast must not keep a live lifecycle")
	}
}

func TestInvalidationForwarding(t *testing.T) {
	t.Parallel()

	center, _, _, unread := newTestCenter(t, nil)
	center.InvalidateUnreadCount()
	center.InvalidateUnreadCount()
	if unread.total() != 2 {
		t.Fatalf("expected two unread invalidations, got %d", unread.total())
	}

	// Without a hook the list invalidation only logs.
	center.InvalidateAlarmList()

	called := 0
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hooked := NewCenter(nil, nil, nil, nil, func() { called++ }, logger)
	hooked.InvalidateAlarmList()
	if called != 1 {
		t.Fatalf("expected list hook invoked once, got %d", called)
	}
}
