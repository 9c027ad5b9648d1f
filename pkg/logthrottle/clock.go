package logthrottle

import (
	"sync/atomic"
	"time"
)

// Clock supplies the current wall-clock time in milliseconds.
type Clock interface {
	NowMillis() int64
}

// SystemClock reads the real wall clock.
type SystemClock struct{}

// NowMillis returns the current Unix time in milliseconds.
func (SystemClock) NowMillis() int64 {
	return time.Now().UnixMilli()
}

// ManualClock is a Clock that only moves when told to.
// It is safe for concurrent use.
type ManualClock struct {
	millis atomic.Int64
}

// NewManualClock creates a ManualClock starting at the given millisecond.
func NewManualClock(startMillis int64) *ManualClock {
	c := &ManualClock{}
	c.millis.Store(startMillis)
	return c
}

// NowMillis returns the current manual time in milliseconds.
func (c *ManualClock) NowMillis() int64 {
	return c.millis.Load()
}

// AdvanceMillis moves the clock forward by ms milliseconds.
func (c *ManualClock) AdvanceMillis(ms int64) {
	c.millis.Add(ms)
}

// Advance moves the clock forward by d, truncated to milliseconds.
func (c *ManualClock) Advance(d time.Duration) {
	c.millis.Add(d.Milliseconds())
}
