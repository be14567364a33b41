package core

import (
	"sync"
	"time"
)

// Clock is the loop's monotonic time source.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the process monotonic clock.
type SystemClock struct{}

// Now returns the current time with its monotonic reading.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// DeltaSince returns the seconds elapsed on c since t. The result is never negative;
// a stalled clock yields 0.
func DeltaSince(c Clock, t time.Time) float64 {
	d := c.Now().Sub(t).Seconds()
	if d < 0 {
		return 0
	}
	return d
}

// ManualClock is a Clock that only moves when told to. Headless runs and tests
// drive the frame loop with it to get exact frame deltas.
type ManualClock struct {
	mu  sync.RWMutex
	now time.Time
}

// NewManualClock creates a manual clock starting at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current manual time.
func (c *ManualClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

// Advance moves the clock forward by d. Negative durations are ignored.
func (c *ManualClock) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// AdvanceSeconds moves the clock forward by s seconds.
func (c *ManualClock) AdvanceSeconds(s float64) {
	c.Advance(time.Duration(s * float64(time.Second)))
}
