package framework

import (
	"sync/atomic"
	"time"
)

// SystemClock reads the monotonic wall clock.
type SystemClock struct {
	start time.Time
}

// NewSystemClock creates a SystemClock with epoch at now.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// Now implements Clock.
func (c *SystemClock) Now() time.Duration {
	return time.Since(c.start)
}

// ManualClock only moves when advanced explicitly.
// It's used by simulations and tests.
type ManualClock struct {
	now atomic.Int64
}

// Now implements Clock.
func (c *ManualClock) Now() time.Duration {
	return time.Duration(c.now.Load())
}

// Advance moves the clock forward and returns the new time.
func (c *ManualClock) Advance(d time.Duration) time.Duration {
	return time.Duration(c.now.Add(int64(d)))
}

// Set sets the current time.
func (c *ManualClock) Set(t time.Duration) {
	c.now.Store(int64(t))
}
