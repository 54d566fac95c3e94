// Package dispatch maps decoded NEC codes to actions and runs the
// foreground command loop.
package dispatch

import (
	"fmt"

	"github.com/sparques/irservo/actuator"
)

// Recognized codes, in the decoder's bit order.
const (
	CodeChannelUp   uint32 = 0x20DF00FF
	CodeChannelDown uint32 = 0x20DF807F
	CodeVolumeUp    uint32 = 0x20DF40BF
	CodeVolumeDown  uint32 = 0x20DFC03F
)

// ActionKind is what a command does.
type ActionKind uint8

const (
	Move ActionKind = iota + 1
	Toggle
)

func (k ActionKind) String() string {
	switch k {
	case Move:
		return "move"
	case Toggle:
		return "toggle"
	}
	return fmt.Sprintf("ActionKind(%d)", uint8(k))
}

// Action is the effect of a recognized command.
type Action struct {
	Kind     ActionKind
	Position actuator.Position
}

func (a Action) String() string {
	if a.Kind == Move {
		return "move " + a.Position.String()
	}
	return a.Kind.String()
}

// Table maps codes to actions.
type Table map[uint32]Action

// DefaultTable binds the channel and volume keys of an LG TV remote.
var DefaultTable = Table{
	CodeChannelUp:   {Kind: Move, Position: actuator.PositionA},
	CodeChannelDown: {Kind: Move, Position: actuator.PositionB},
	CodeVolumeUp:    {Kind: Move, Position: actuator.PositionC},
	CodeVolumeDown:  {Kind: Toggle},
}

// Lookup returns the action bound to code.
func (t Table) Lookup(code uint32) (Action, bool) {
	a, ok := t[code]
	return a, ok
}
