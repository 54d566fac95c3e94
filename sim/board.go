// Package sim is a virtual board for running the controller on a host.
//
// Time is virtual: it only moves when the board is told to advance, by
// feeding IR pairs, idling, or by the servo dwell. The timer ticks the
// Time Base while it is in TickMode with its interrupt unmasked, and a
// reprogrammed timer restarts its period from zero, as hardware does.
// Interrupts do not nest: time spent in the edge handler leaves at most one
// timer interrupt pending, delivered when the handler returns.
package sim

import (
	"sync"
	"time"

	"github.com/sparques/irservo"
	"github.com/sparques/irservo/timer"
)

// Pulse is one servo hold recorded while the timer was in PwmMode.
type Pulse struct {
	Config timer.Config
	Start  time.Duration
	Hold   time.Duration
	Width  time.Duration
	Period time.Duration
}

// Board is the virtual hardware. It implements timer.Peripheral.
type Board struct {
	mu sync.Mutex

	now   time.Duration
	phase time.Duration
	cfg   timer.Config
	irq   bool
	tb    *timer.TimeBase

	inEdge      bool
	tickPending bool

	latch   irservo.EdgeLatch
	handler irservo.EdgeHandler
	line    bool
	edges   int

	pwmSince time.Duration
	pulses   []Pulse

	led LED
}

var _ timer.Peripheral = (*Board)(nil)

// NewBoard returns a board with the receiver output idling high.
func NewBoard() *Board {
	b := &Board{
		tb:   new(timer.TimeBase),
		line: true,
	}
	b.latch.Settle = func() { b.advance(irservo.DefaultSettle) }
	return b
}

// Attach sets the edge interrupt handler.
func (b *Board) Attach(h irservo.EdgeHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handler = h
}

// TimeBase returns the counter driven by the timer interrupt.
func (b *Board) TimeBase() *timer.TimeBase { return b.tb }

// LED returns the indicator pin.
func (b *Board) LED() *LED { return &b.led }

// Configure implements timer.Peripheral.
func (b *Board) Configure(cfg timer.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cfg.Mode == timer.PwmMode {
		b.pulses = append(b.pulses, Pulse{
			Config: b.cfg,
			Start:  b.pwmSince,
			Hold:   b.now - b.pwmSince,
			Width:  b.cfg.Width(),
			Period: b.cfg.Period(),
		})
	}
	if cfg.Mode == timer.PwmMode {
		b.pwmSince = b.now
	}
	b.cfg = cfg
	b.phase = 0
	return nil
}

// SetIRQ implements timer.Peripheral.
func (b *Board) SetIRQ(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.irq = on
}

// Config implements timer.Peripheral.
func (b *Board) Config() timer.Config {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cfg
}

// Now returns the virtual time.
func (b *Board) Now() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.now
}

// Sleep advances virtual time by d. It is the servo dwell.
func (b *Board) Sleep(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advance(d)
}

// Delay advances virtual time by d from inside an edge handler, where the
// board is already locked. It is the busy wait of the fault pattern.
func (b *Board) Delay(d time.Duration) { b.advance(d) }

// Idle holds the receiver output at its current level for d.
func (b *Board) Idle(d time.Duration) { b.Sleep(d) }

func (b *Board) ticking() bool {
	return b.cfg.Mode == timer.TickMode && b.cfg.IRQ && b.irq
}

func (b *Board) advance(d time.Duration) {
	if d <= 0 {
		return
	}
	b.now += d
	if !b.ticking() {
		return
	}
	period := b.cfg.Period()
	b.phase += d
	for b.phase >= period {
		b.phase -= period
		if b.inEdge {
			b.tickPending = true
			continue
		}
		b.tb.Tick()
	}
}

// service runs the edge handler on whatever is latched. A timer interrupt
// raised meanwhile waits for the handler to return.
func (b *Board) service() {
	if b.handler == nil {
		b.latch.Clear()
		return
	}
	b.inEdge = true
	b.latch.Service(b.handler)
	b.inEdge = false
	if b.tickPending {
		b.tickPending = false
		if b.ticking() {
			b.tb.Tick()
		}
	}
}

func (b *Board) advanceTo(t time.Duration) {
	b.advance(t - b.now)
}

// setLine moves the receiver output to level and runs the edge interrupt
// if it changed.
func (b *Board) setLine(level bool) {
	if level == b.line {
		return
	}
	b.line = level
	b.edges++
	if level {
		b.latch.Latch(irservo.EdgeRising)
	} else {
		b.latch.Latch(irservo.EdgeFalling)
	}
	b.service()
}

// Feed plays pairs on the receiver output. A demodulating receiver pulls
// its output low while the carrier is on.
func (b *Board) Feed(pairs ...irservo.TimePair) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range pairs {
		start := b.now
		b.setLine(false)
		b.advanceTo(start + p[0])
		start = b.now
		b.setLine(true)
		b.advanceTo(start + p[1])
	}
}

// Send plays each frame followed by gap of silence.
func (b *Board) Send(gap time.Duration, fms ...irservo.FrameMarshaller) {
	for _, fm := range fms {
		b.Feed(fm.MarshalFrame()...)
		b.Idle(gap)
	}
}

// InjectDoubleEdge latches both edge directions before the interrupt is
// serviced, as a glitch shorter than the interrupt latency would.
func (b *Board) InjectDoubleEdge() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.latch.Latch(irservo.EdgeRising)
	b.latch.Latch(irservo.EdgeFalling)
	b.service()
}

// Edges returns the number of edges seen on the receiver output.
func (b *Board) Edges() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.edges
}

// Pulses returns the servo holds recorded so far.
func (b *Board) Pulses() []Pulse {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Pulse(nil), b.pulses...)
}

// LED records the indicator output.
type LED struct {
	mu     sync.Mutex
	levels []bool
}

// Set implements actuator.Pin.
func (l *LED) Set(high bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.levels = append(l.levels, high)
}

// Levels returns every level written, oldest first.
func (l *LED) Levels() []bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]bool(nil), l.levels...)
}
