package timer

import "sync/atomic"

// TimeBase is the tick counter advanced by the timer interrupt while the
// timer is in TickMode. It wraps silently; the intervals it measures are
// short compared to its range.
type TimeBase struct {
	n atomic.Uint32
}

// Tick advances the counter by one period.
func (tb *TimeBase) Tick() { tb.n.Add(1) }

// Ticks returns the periods elapsed since the last Reset.
func (tb *TimeBase) Ticks() uint32 { return tb.n.Load() }

// Reset restarts the count at zero.
func (tb *TimeBase) Reset() { tb.n.Store(0) }
