package nec

import (
	"math/bits"

	"github.com/sparques/irservo"
)

var (
	LeadPair   = irservo.TimePair{LeadMark, LeadSpace}
	RepeatPair = irservo.TimePair{LeadMark, RepeatSpace}
	ZeroPair   = irservo.TimePair{BitMark, Bit0Space}
	OnePair    = irservo.TimePair{BitMark, Bit1Space}
	TrailPair  = irservo.TimePair{TrailMark, 0}
)

// Frame is a complete NEC transmission of Code, in the decoder's bit order:
// the first bit on the wire is bit 31.
type Frame struct {
	Code uint32
}

// MarshalFrame implements irservo.FrameMarshaller.
func (f Frame) MarshalFrame() []irservo.TimePair {
	out := make([]irservo.TimePair, 0, FrameBits+2)
	out = append(out, LeadPair)
	for bit := FrameBits - 1; bit >= 0; bit-- {
		if (f.Code>>bit)&1 == 1 {
			out = append(out, OnePair)
		} else {
			out = append(out, ZeroPair)
		}
	}
	return append(out, TrailPair)
}

// Repeat is the NEC repeat code sent while a button is held.
type Repeat struct{}

// MarshalFrame implements irservo.FrameMarshaller.
func (Repeat) MarshalFrame() []irservo.TimePair {
	return []irservo.TimePair{RepeatPair, TrailPair}
}

// Split breaks a decoded code into NEC address and command. The wire sends
// each byte LSB first in the order address low, address high, command,
// inverted command; the decoder accumulates MSB first, so the code is the
// bit reversal of that layout. valid is false when the command does not
// match its inverse.
func Split(code uint32) (valid bool, address uint16, command byte) {
	raw := bits.Reverse32(code)
	addrLow := byte(raw)
	addrHigh := byte(raw >> 8)
	command = byte(raw >> 16)
	invCmd := byte(raw >> 24)
	return command == ^invCmd, makeAddress(addrLow, addrHigh), command
}

// Make assembles the code Split would decode into address and command.
func Make(address uint16, command byte) uint32 {
	addrLow, addrHigh := byte(address), byte(address>>8)
	if addrHigh == 0 {
		// 8-bit addresses carry their inverse in the high byte
		addrHigh = ^addrLow
	}
	raw := uint32(^command)<<24 | uint32(command)<<16 | uint32(addrHigh)<<8 | uint32(addrLow)
	return bits.Reverse32(raw)
}

func makeAddress(addrLow, addrHigh byte) uint16 {
	if addrHigh == ^addrLow {
		// indistinguishable from an 8-bit address with inverse validation
		return uint16(addrLow)
	}
	return uint16(addrHigh)<<8 | uint16(addrLow)
}
