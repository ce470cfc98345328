package utils

import "time"

// Clock abstracts time for the pieces that schedule work, so phase timing
// and preemption can be driven deterministically in tests.
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
	// After returns a channel that fires once d has elapsed.
	After(d time.Duration) <-chan time.Time
}

// RealClock delegates to the time package.
type RealClock struct{}

// NewRealClock creates a RealClock.
func NewRealClock() *RealClock { return &RealClock{} }

func (c *RealClock) Now() time.Time                         { return time.Now() }
func (c *RealClock) Since(t time.Time) time.Duration        { return time.Since(t) }
func (c *RealClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// MockClock is a manually advanced clock for tests. It is not safe for
// concurrent use.
type MockClock struct {
	now   time.Time
	fired chan time.Time
}

// NewMockClock creates a MockClock starting at the given time.
func NewMockClock(start time.Time) *MockClock {
	return &MockClock{now: start, fired: make(chan time.Time, 1)}
}

func (c *MockClock) Now() time.Time                  { return c.now }
func (c *MockClock) Since(t time.Time) time.Duration { return c.now.Sub(t) }

// After advances the clock by d and fires immediately; timers never block
// under mock time.
func (c *MockClock) After(d time.Duration) <-chan time.Time {
	c.Advance(d)
	c.fired <- c.now
	return c.fired
}

// Advance moves the clock forward by d.
func (c *MockClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// Set moves the clock to t.
func (c *MockClock) Set(t time.Time) { c.now = t }
