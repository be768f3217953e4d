package toast

import (
	"log/slog"
	"sync"
	"time"

	"toastd/internal/clock"
)

// Lifecycle phases for one rendered toast.
const (
	// PhaseEntering covers the one-frame entrance transition after Start.
	PhaseEntering = "entering"
	// PhaseCountdown covers the idle auto-dismiss countdown.
	PhaseCountdown = "countdown"
	// PhasePaused covers a pointer-hover hold; the countdown timer is stopped.
	PhasePaused = "paused"
	// PhaseClosing covers the exit transition before the queue removal.
	PhaseClosing = "closing"
)

const (
	// DefaultSimpleDuration is the countdown for plain auto-dismiss toasts.
	DefaultSimpleDuration = 3000 * time.Millisecond
	// DefaultActionDuration is the countdown for toasts carrying actions.
	DefaultActionDuration = 5000 * time.Millisecond
	// DefaultExitDelay keeps the exit transition observable before removal.
	DefaultExitDelay = 400 * time.Millisecond

	// enterDelay approximates one rendering frame.
	enterDelay = 16 * time.Millisecond
)

// ControllerConfig tunes per-toast lifecycle timing.
// Params: countdown durations per presentation style and exit delay.
// Returns: zero values fall back to the defaults above.
type ControllerConfig struct {
	SimpleDuration time.Duration
	ActionDuration time.Duration
	ExitDelay      time.Duration
}

// item tracks lifecycle state for one queue entry.
type item struct {
	phase      string
	timer      clock.Timer
	hasActions bool
}

// Controller drives per-toast countdown timers with pause/resume semantics.
// Params: queue for terminal removal, clock for timers, lifecycle tuning.
// Returns: autonomous lifecycle driver; all removal funnels into the queue.
type Controller struct {
	mu      sync.Mutex
	queue   *Queue
	clk     clock.Clock
	logger  *slog.Logger
	cfg     ControllerConfig
	items   map[string]*item
	stopped bool
}

// NewController creates the lifecycle controller.
// Params: toast queue, clock, logger, and timing config.
// Returns: initialized controller.
func NewController(queue *Queue, clk clock.Clock, logger *slog.Logger, cfg ControllerConfig) *Controller {
	if cfg.SimpleDuration <= 0 {
		cfg.SimpleDuration = DefaultSimpleDuration
	}
	if cfg.ActionDuration <= 0 {
		cfg.ActionDuration = DefaultActionDuration
	}
	if cfg.ExitDelay <= 0 {
		cfg.ExitDelay = DefaultExitDelay
	}
	return &Controller{
		queue:  queue,
		clk:    clk,
		logger: logger,
		cfg:    cfg,
		items:  make(map[string]*item),
	}
}

// Start begins the lifecycle of one freshly added entry.
// Params: queue entry returned by Add.
// Returns: none; entry transitions to countdown after the entrance frame.
func (c *Controller) Start(entry Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	if _, exists := c.items[entry.ID]; exists {
		return
	}
	state := &item{phase: PhaseEntering, hasActions: len(entry.Actions) > 0}
	c.items[entry.ID] = state
	id := entry.ID
	state.timer = c.clk.AfterFunc(enterDelay, func() {
		c.beginCountdown(id)
	})
}

// Pause holds the countdown; a paused toast never expires.
// Params: entry id.
// Returns: none; unknown ids and closing toasts are a no-op.
func (c *Controller) Pause(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, ok := c.items[id]
	if !ok || state.phase == PhaseClosing {
		return
	}
	stopTimer(state)
	state.phase = PhasePaused
}

// Resume restarts a full-duration countdown after a pause.
// Sub-second remaining-time precision is not a user-visible requirement,
// so resume always arms a fresh full duration.
// Params: entry id.
// Returns: none; only paused toasts are affected.
func (c *Controller) Resume(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, ok := c.items[id]
	if !ok || state.phase != PhasePaused {
		return
	}
	c.armCountdownLocked(id, state)
}

// Close begins the exit transition immediately, regardless of timer state.
// Params: entry id.
// Returns: none; unknown ids are a no-op.
func (c *Controller) Close(id string) {
	c.beginClosing(id)
}

// Drop cancels one lifecycle without touching the queue.
// Capacity eviction already removed the entry, so only the pending timer and
// the item state need to go.
// Params: entry id.
// Returns: none; unknown ids are a no-op.
func (c *Controller) Drop(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, ok := c.items[id]
	if !ok {
		return
	}
	stopTimer(state)
	delete(c.items, id)
}

// Phase reports the current lifecycle phase of one entry.
// Params: entry id.
// Returns: phase name and presence flag.
func (c *Controller) Phase(id string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, ok := c.items[id]
	if !ok {
		return "", false
	}
	return state.phase, true
}

// Stop cancels every pending timer; late-firing timers become no-ops.
// Params: none.
// Returns: none; the controller accepts no further Start calls.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	for _, state := range c.items {
		stopTimer(state)
	}
	c.items = make(map[string]*item)
}

// beginCountdown moves one entry from entering/pause into countdown.
// Params: entry id.
// Returns: none.
func (c *Controller) beginCountdown(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, ok := c.items[id]
	if !ok || state.phase != PhaseEntering {
		return
	}
	c.armCountdownLocked(id, state)
}

// armCountdownLocked arms a full-duration expiry timer.
// Params: entry id and its state; controller lock must be held.
// Returns: none.
func (c *Controller) armCountdownLocked(id string, state *item) {
	state.phase = PhaseCountdown
	duration := c.cfg.SimpleDuration
	if state.hasActions {
		duration = c.cfg.ActionDuration
	}
	state.timer = c.clk.AfterFunc(duration, func() {
		c.beginClosing(id)
	})
}

// beginClosing starts the two-phase removal: visual hide, then data remove.
// Params: entry id.
// Returns: none.
func (c *Controller) beginClosing(id string) {
	c.mu.Lock()
	state, ok := c.items[id]
	if !ok || state.phase == PhaseClosing {
		c.mu.Unlock()
		return
	}
	stopTimer(state)
	state.phase = PhaseClosing
	state.timer = c.clk.AfterFunc(c.cfg.ExitDelay, func() {
		c.finish(id)
	})
	c.mu.Unlock()
}

// finish removes the entry from the queue after the exit transition.
// Params: entry id.
// Returns: none; removal of an already-gone entry is a no-op.
func (c *Controller) finish(id string) {
	c.mu.Lock()
	delete(c.items, id)
	stopped := c.stopped
	c.mu.Unlock()
	if stopped {
		return
	}
	if removed := c.queue.Remove(id); !removed && c.logger != nil {
		c.logger.Debug("toast already removed before lifecycle finish", "toast_id", id)
	}
}

// stopTimer stops a pending timer when present.
// Params: item state.
// Returns: none.
func stopTimer(state *item) {
	if state.timer != nil {
		state.timer.Stop()
		state.timer = nil
	}
}
