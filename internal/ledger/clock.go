package ledger

import (
	"sync/atomic"
	"time"
)

// SystemClock reports wall-clock Unix seconds.
type SystemClock struct{}

// UnixTimestamp implements lottery.Clock.
func (SystemClock) UnixTimestamp() int64 {
	return time.Now().Unix()
}

// LogicalClock is a monotonic clock that advances by one on every read.
//
// It makes local runs reproducible: the same sequence of transactions sees
// the same clock values regardless of wall time.
//
// Thread-safety: LogicalClock is safe for concurrent use (atomic operations).
type LogicalClock struct {
	seq atomic.Int64
}

// NewLogicalClock creates a clock whose first reading is 1.
func NewLogicalClock() *LogicalClock {
	return &LogicalClock{}
}

// NewLogicalClockAt creates a clock whose first reading is start+1.
func NewLogicalClockAt(start int64) *LogicalClock {
	c := &LogicalClock{}
	c.seq.Store(start)
	return c
}

// UnixTimestamp implements lottery.Clock. Each call returns a unique,
// increasing value.
func (c *LogicalClock) UnixTimestamp() int64 {
	return c.seq.Add(1)
}

// Current returns the last value handed out without advancing.
func (c *LogicalClock) Current() int64 {
	return c.seq.Load()
}
