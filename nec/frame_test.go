package nec

import (
	"fmt"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestSplitMake(t *testing.T) {
	c := qt.New(t)

	for _, tc := range []struct {
		code    uint32
		address uint16
		command byte
	}{
		{0x20DF00FF, 0x0004, 0x00},
		{0x20DF807F, 0x0004, 0x01},
		{0x20DF40BF, 0x0004, 0x02},
		{0x20DFC03F, 0x0004, 0x03},
		{0x00FF00FF, 0x0000, 0x00},
		{0x807F00FF, 0x0001, 0x00},
		{0x80FF00FF, 0xFF01, 0x00},
	} {
		c.Run(fmt.Sprintf("%08X", tc.code), func(c *qt.C) {
			valid, addr, cmd := Split(tc.code)
			c.Assert(valid, qt.IsTrue)
			c.Assert(addr, qt.Equals, tc.address)
			c.Assert(cmd, qt.Equals, tc.command)
			c.Assert(Make(tc.address, tc.command), qt.Equals, tc.code)
		})
	}
}

func TestSplitInvalid(t *testing.T) {
	c := qt.New(t)

	for bit := 0; bit < 16; bit++ {
		code := uint32(0x20DF00FF) ^ 1<<bit
		valid, _, _ := Split(code)
		c.Assert(valid, qt.IsFalse, qt.Commentf("flipped bit %d", bit))
	}
}

func TestMarshalFrame(t *testing.T) {
	c := qt.New(t)

	pairs := Frame{Code: 0x80000001}.MarshalFrame()
	c.Assert(pairs, qt.HasLen, FrameBits+2)
	c.Assert(pairs[0], qt.Equals, LeadPair)
	c.Assert(pairs[1], qt.Equals, OnePair)
	for _, p := range pairs[2:FrameBits] {
		c.Assert(p, qt.Equals, ZeroPair)
	}
	c.Assert(pairs[FrameBits], qt.Equals, OnePair)
	c.Assert(pairs[FrameBits+1], qt.Equals, TrailPair)
}
