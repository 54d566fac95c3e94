package nec

import (
	"sync/atomic"

	"github.com/sparques/irservo"
	"github.com/sparques/irservo/timer"
)

// Ticker is the Time Base as seen by the decoder.
type Ticker interface {
	Ticks() uint32
	Reset()
}

// Indicator is the visible fault output.
type Indicator interface {
	On()
	FaultBlink()
}

// Config configures a StateMachine.
type Config struct {
	// Policy is applied to a header seen mid-frame. Zero is ResyncRestart.
	Policy Policy
}

// Stats counts what the decoder has seen. Fields are updated from
// interrupt context; read them with Stats.
type Stats struct {
	Frames       uint32
	Overruns     uint32
	Faults       uint32
	HeaderErrors uint32
	Aborts       uint32
	Dropped      uint32
}

// StateMachine runs the Decoder inside the edge interrupt and applies its
// effects. It implements irservo.EdgeHandler and timer.Listener: while the
// timer is out of TickMode no interval can be measured, so edges are
// dropped, and the decoder restarts idle once ticks resume.
type StateMachine struct {
	ticker    Ticker
	indicator Indicator
	slot      *Slot
	policy    Policy

	dec Decoder

	suspended atomic.Bool
	rearm     atomic.Bool

	frames       atomic.Uint32
	faults       atomic.Uint32
	headerErrors atomic.Uint32
	aborts       atomic.Uint32
	dropped      atomic.Uint32
}

var (
	_ irservo.EdgeHandler = (*StateMachine)(nil)
	_ timer.Listener      = (*StateMachine)(nil)
)

// NewStateMachine returns an idle decoder publishing into slot.
func NewStateMachine(cfg Config, tb Ticker, ind Indicator, slot *Slot) *StateMachine {
	return &StateMachine{
		ticker:    tb,
		indicator: ind,
		slot:      slot,
		policy:    cfg.Policy,
		dec:       NewDecoder(),
	}
}

// HandleEdges implements irservo.EdgeHandler.
func (sm *StateMachine) HandleEdges(e irservo.EdgeFlags) {
	if sm.suspended.Load() {
		sm.dropped.Add(1)
		return
	}
	if sm.rearm.Swap(false) {
		sm.dec = NewDecoder()
	}

	var fx Effects
	sm.dec, fx = sm.dec.Step(Event{Edges: e, Ticks: sm.ticker.Ticks()}, sm.policy)

	if fx.Has(EffectResetTicks) {
		sm.ticker.Reset()
	}
	if fx.Has(EffectPublish) {
		if sm.slot.Publish(fx.Frame) {
			sm.frames.Add(1)
		}
	}
	if fx.Has(EffectIndicatorOn) {
		sm.headerErrors.Add(1)
		sm.indicator.On()
	}
	if fx.Has(EffectFaultBlink) {
		sm.faults.Add(1)
		sm.indicator.FaultBlink()
	}
	if fx.Has(EffectAbort) {
		sm.aborts.Add(1)
	}
}

// TimerModeChanged implements timer.Listener.
func (sm *StateMachine) TimerModeChanged(m timer.Mode) {
	if m == timer.TickMode {
		sm.rearm.Store(true)
		sm.suspended.Store(false)
		return
	}
	sm.suspended.Store(true)
}

// Decoder returns the current decoding state. Only call it from the
// context that delivers edges, or while edges are quiet.
func (sm *StateMachine) Decoder() Decoder {
	if sm.rearm.Load() {
		return NewDecoder()
	}
	return sm.dec
}

// Suspended reports whether edges are currently dropped.
func (sm *StateMachine) Suspended() bool { return sm.suspended.Load() }

// Stats returns a snapshot of the counters.
func (sm *StateMachine) Stats() Stats {
	return Stats{
		Frames:       sm.frames.Load(),
		Overruns:     sm.slot.Overruns(),
		Faults:       sm.faults.Load(),
		HeaderErrors: sm.headerErrors.Load(),
		Aborts:       sm.aborts.Load(),
		Dropped:      sm.dropped.Load(),
	}
}
