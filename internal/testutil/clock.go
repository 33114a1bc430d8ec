package testutil

import "sync"

// Clock is a settable clock for tests. It implements lottery.Clock.
//
// Unlike ledger.LogicalClock, Clock does not advance on read: a test pins
// the draw entropy with Set and moves it explicitly with Advance.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Clock struct {
	mu  sync.Mutex
	now int64
}

// NewClock creates a clock reading start.
func NewClock(start int64) *Clock {
	return &Clock{now: start}
}

// UnixTimestamp returns the current reading without advancing.
func (c *Clock) UnixTimestamp() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set pins the clock to t.
func (c *Clock) Set(t int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d and returns the new reading.
func (c *Clock) Advance(d int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += d
	return c.now
}
