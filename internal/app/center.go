package app

import (
	"context"
	"log/slog"
	"time"

	"toastd/internal/classify"
	"toastd/internal/domain"
	"toastd/internal/toast"
)

const mirrorTimeout = 10 * time.Second

// Mirrorer forwards one toast to an out-of-band sink.
// Params: context and toast entry.
// Returns: none; delivery is best-effort.
type Mirrorer interface {
	Mirror(ctx context.Context, entry toast.Entry)
}

// UnreadInvalidator marks the unread badge stale.
// Params: none.
// Returns: none.
type UnreadInvalidator interface {
	Invalidate()
}

// Center glues normalized alarms to the toast queue and cache signals.
// It implements the push manager's alarm sink and invalidator, and the
// dispatcher's toaster.
// Params: queue, lifecycle controller, badge, optional mirror, and hooks.
// Returns: single entry point for posting toasts from any source.
type Center struct {
	queue        *toast.Queue
	controller   *toast.Controller
	unread       UnreadInvalidator
	mirror       Mirrorer
	onListChange func()
	logger       *slog.Logger
}

// NewCenter creates the notification center.
// Params: queue, controller, badge invalidator, optional mirror (nil to
// disable), optional alarm-list change hook (nil to log only), and logger.
// Returns: initialized center.
func NewCenter(queue *toast.Queue, controller *toast.Controller, unread UnreadInvalidator, mirror Mirrorer, onListChange func(), logger *slog.Logger) *Center {
	return &Center{
		queue:        queue,
		controller:   controller,
		unread:       unread,
		mirror:       mirror,
		onListChange: onListChange,
		logger:       logger,
	}
}

// HandleAlarm classifies one alarm and posts the resulting toast.
// Params: normalized alarm from the push manager.
// Returns: none.
func (c *Center) HandleAlarm(alarm domain.Alarm) {
	descriptor := classify.Classify(alarm)
	entry := c.Post(descriptor)
	c.logger.Info("alarm surfaced as toast",
		"alarm_id", alarm.ID,
		"alarm_type", string(alarm.Type),
		"toast_id", entry.ID,
		"severity", string(entry.Severity),
	)

	if c.mirror != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
			defer cancel()
			c.mirror.Mirror(ctx, entry)
		}()
	}
}

// Post adds one toast and starts its lifecycle.
// Lifecycles of entries evicted by the capacity bound are dropped so their
// countdown timers do not linger.
// Params: toast descriptor from classification or an ad-hoc caller.
// Returns: created queue entry.
func (c *Center) Post(descriptor domain.ToastDescriptor) toast.Entry {
	entry, evicted := c.queue.Add(descriptor)
	for _, id := range evicted {
		c.controller.Drop(id)
	}
	c.controller.Start(entry)
	return entry
}

// Remove deletes one toast from the queue.
// Params: entry id.
// Returns: true when an entry was removed.
func (c *Center) Remove(id string) bool {
	return c.queue.Remove(id)
}

// InvalidateUnreadCount signals staleness of the unread badge.
// Params: none.
// Returns: none.
func (c *Center) InvalidateUnreadCount() {
	if c.unread != nil {
		c.unread.Invalidate()
	}
}

// InvalidateAlarmList signals staleness of the notification list cache.
// The list itself is owned by the external query layer; this only forwards
// the signal.
// Params: none.
// Returns: none.
func (c *Center) InvalidateAlarmList() {
	if c.onListChange != nil {
		c.onListChange()
		return
	}
	c.logger.Debug("notification list invalidated")
}
