package irservo

import (
	"sync/atomic"
	"time"
)

// EdgeLatch mirrors a port interrupt-flag register: edge interrupts latch
// their direction with Latch, and Service hands whatever is pending to an
// EdgeHandler. The latch is cleared only after the settle delay, so an edge
// that arrives while the handler and settle delay run is discarded.
type EdgeLatch struct {
	pending atomic.Uint32

	// Settle is called between handling and clearing. It defaults to a busy
	// wait of DefaultSettle.
	Settle func()
}

// Latch records e as pending.
func (l *EdgeLatch) Latch(e EdgeFlags) {
	for {
		old := l.pending.Load()
		if l.pending.CompareAndSwap(old, old|uint32(e)) {
			return
		}
	}
}

// Pending reports the flags latched so far.
func (l *EdgeLatch) Pending() EdgeFlags {
	return EdgeFlags(l.pending.Load())
}

// Clear drops anything latched without handling it.
func (l *EdgeLatch) Clear() { l.pending.Store(0) }

// Service passes the pending flags to h, settles, then clears the latch.
// It does nothing if no flag is pending.
func (l *EdgeLatch) Service(h EdgeHandler) {
	e := EdgeFlags(l.pending.Load())
	if e == 0 {
		return
	}
	h.HandleEdges(e)
	if l.Settle != nil {
		l.Settle()
	} else {
		Spin(DefaultSettle)
	}
	l.pending.Store(0)
}

// Spin busy-waits for d. Interrupt handlers use it where they cannot sleep.
func Spin(d time.Duration) {
	start := time.Now()
	for time.Since(start) < d {
	}
}
