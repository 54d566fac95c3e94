package nec

import (
	"fmt"

	"github.com/sparques/irservo"
)

// Policy decides what happens to a partly received frame when a header
// interval shows up in the middle of it.
type Policy uint8

const (
	// ResyncRestart drops the partial frame and treats the header as the
	// start of a new one.
	ResyncRestart Policy = iota
	// ResyncNone keeps the partial frame; only the indicator reports the
	// fault. The next gap or completed frame resynchronizes.
	ResyncNone
)

func (p Policy) String() string {
	switch p {
	case ResyncRestart:
		return "restart"
	case ResyncNone:
		return "none"
	}
	return fmt.Sprintf("Policy(%d)", uint8(p))
}

// ParsePolicy parses the String form of a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "restart":
		return ResyncRestart, nil
	case "none":
		return ResyncNone, nil
	}
	return 0, fmt.Errorf("nec: unknown resync policy %q", s)
}

// Event is one serviced edge interrupt: the latched edge flags and the Time
// Base reading at service time.
type Event struct {
	Edges irservo.EdgeFlags
	Ticks uint32
}

// Effect is a side effect requested by a decoder transition.
type Effect uint8

const (
	// EffectResetTicks restarts the Time Base at zero.
	EffectResetTicks Effect = 1 << iota
	// EffectPublish hands Effects.Frame to the dispatcher.
	EffectPublish
	// EffectIndicatorOn forces the indicator on: header inside a frame.
	EffectIndicatorOn
	// EffectFaultBlink toggles the indicator three times: both edges
	// latched at once.
	EffectFaultBlink
	// EffectAbort reports a partial frame dropped at an inter-frame gap.
	EffectAbort
)

// Effects is the outcome of a transition.
type Effects struct {
	Set   Effect
	Frame uint32
}

// Has reports whether e is requested.
func (fx Effects) Has(e Effect) bool { return fx.Set&e != 0 }

// Decoder is the decoding state. The zero value is not ready; use
// NewDecoder.
type Decoder struct {
	// Accum holds the committed bits, first received in the most
	// significant position once the frame is complete.
	Accum uint32
	// Index is the number of committed bits.
	Index uint8
	// Idle is set while outside a frame: the next rising edge starts a
	// timing interval, not a data bit.
	Idle bool
	// Trailer is set between publishing a frame and the rising edge that
	// ends its trail mark. That edge is absorbed and the decoder stays
	// Idle.
	Trailer bool
}

// NewDecoder returns an idle decoder.
func NewDecoder() Decoder {
	return Decoder{Idle: true}
}

func (d Decoder) String() string {
	if d.Idle {
		return fmt.Sprintf("idle{accum=%#08x index=%d}", d.Accum, d.Index)
	}
	return fmt.Sprintf("frame{accum=%#08x index=%d}", d.Accum, d.Index)
}

// Step is the decoder transition function. It never touches hardware: the
// caller applies the returned effects.
func (d Decoder) Step(ev Event, p Policy) (Decoder, Effects) {
	var fx Effects
	switch ev.Edges {
	case irservo.EdgeBoth:
		fx.Set |= EffectFaultBlink

	case irservo.EdgeRising:
		if d.Trailer {
			d.Trailer = false
			break
		}
		d.Idle = false
		fx.Set |= EffectResetTicks

	case irservo.EdgeFalling:
		if d.Idle {
			break
		}
		switch Classify(ev.Ticks) {
		case SymbolZero:
			d.Accum <<= 1
			d.Index++
		case SymbolOne:
			d.Accum = d.Accum<<1 | 1
			d.Index++
		case SymbolHeader:
			if d.Accum == 0 && d.Index == 0 {
				break
			}
			fx.Set |= EffectIndicatorOn
			if p == ResyncRestart {
				d.Accum, d.Index = 0, 0
			}
		case SymbolGap:
			if d.Index != 0 {
				fx.Set |= EffectAbort
			}
			d = NewDecoder()
		}
		if d.Index >= FrameBits {
			fx.Set |= EffectPublish
			fx.Frame = d.Accum
			d = NewDecoder()
			d.Trailer = true
		}
	}
	return d, fx
}
