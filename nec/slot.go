package nec

import (
	"context"
	"sync/atomic"
)

// Slot hands completed frames from the decoder (interrupt context, single
// writer) to the dispatcher (foreground, single reader). It holds at most
// one frame: a frame published while the previous one is still unconsumed
// is dropped and counted as an overrun.
type Slot struct {
	code     atomic.Uint32
	full     atomic.Bool
	overruns atomic.Uint32
	ready    chan struct{}
}

// NewSlot returns an empty slot.
func NewSlot() *Slot {
	return &Slot{ready: make(chan struct{}, 1)}
}

// Publish stores code. It never blocks, so it is safe from an interrupt
// handler. It reports false on overrun.
func (s *Slot) Publish(code uint32) bool {
	if s.full.Load() {
		s.overruns.Add(1)
		return false
	}
	s.code.Store(code)
	s.full.Store(true)
	select {
	case s.ready <- struct{}{}:
	default:
	}
	return true
}

// Take removes and returns the pending frame, if any.
func (s *Slot) Take() (uint32, bool) {
	if !s.full.Load() {
		return 0, false
	}
	code := s.code.Load()
	s.full.Store(false)
	return code, true
}

// Ready is signalled after each successful Publish.
func (s *Slot) Ready() <-chan struct{} { return s.ready }

// Wait blocks until a frame is available or ctx is done.
func (s *Slot) Wait(ctx context.Context) (uint32, error) {
	for {
		if code, ok := s.Take(); ok {
			return code, nil
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-s.ready:
		}
	}
}

// Overruns returns the number of frames dropped because the slot was full.
func (s *Slot) Overruns() uint32 { return s.overruns.Load() }
