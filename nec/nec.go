// Package nec decodes NEC infrared frames from the length of the high
// intervals on a demodulating receiver's output, measured in Time Base
// ticks.
//
// NEC references:
// https://www.sbprojects.net/knowledge/ir/nec.php
// https://techdocs.altium.com/display/FPGA/NEC+Infrared+Transmission+Protocol
package nec

import "time"

const (
	Unit         = time.Nanosecond * 562_500 // 562.5 us
	LeadMark     = Unit * 16                 // 9 ms
	LeadSpace    = Unit * 8                  // 4.5 ms
	RepeatSpace  = Unit * 4                  // 2.25 ms
	BitMark      = Unit                      // 562.5 us
	Bit0Space    = Unit                      // 562.5 us
	Bit1Space    = Unit * 3                  // 1.687 ms
	TrailMark    = Unit                      // 562.5 us
	RepeatPeriod = Unit * 192                // 108 ms

	// FrameBits is the number of data bits in a frame.
	FrameBits = 32
)

// Interval thresholds, in ticks of TickPeriod. Each band includes its lower
// bound: exactly ZeroLimit ticks is a one, exactly OneLimit is a header.
const (
	TickPeriod = 100 * time.Microsecond

	ZeroLimit   = 8  // < 0.8 ms
	OneLimit    = 20 // < 2.0 ms
	HeaderLimit = 60 // < 6.0 ms
)

// Symbol is the classification of one high interval.
type Symbol uint8

const (
	SymbolZero Symbol = iota
	SymbolOne
	SymbolHeader
	SymbolGap
)

func (s Symbol) String() string {
	switch s {
	case SymbolZero:
		return "0"
	case SymbolOne:
		return "1"
	case SymbolHeader:
		return "header"
	}
	return "gap"
}

// Classify maps an interval of d ticks to a symbol.
func Classify(d uint32) Symbol {
	switch {
	case d < ZeroLimit:
		return SymbolZero
	case d < OneLimit:
		return SymbolOne
	case d < HeaderLimit:
		return SymbolHeader
	}
	return SymbolGap
}

// Ticks converts a duration to whole ticks, the way the Time Base would
// count it.
func Ticks(d time.Duration) uint32 {
	return uint32(d / TickPeriod)
}
