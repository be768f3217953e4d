package clock

import "time"

// Clock provides current time and timer scheduling for deterministic tests.
// Params: none.
// Returns: wall-clock reads and cancellable timers.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is one scheduled callback that can be cancelled before it fires.
// Params: none.
// Returns: true from Stop when the callback was prevented from running.
type Timer interface {
	Stop() bool
}

// RealClock reads system time and schedules callbacks on runtime timers.
// Params: none.
// Returns: production clock implementation.
type RealClock struct{}

// Now returns current UTC time.
// Params: none.
// Returns: current UTC timestamp.
func (RealClock) Now() time.Time {
	return time.Now().UTC()
}

// AfterFunc schedules fn to run once after d elapses.
// Params: delay duration and callback.
// Returns: cancellable timer handle.
func (RealClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
