package dispatch

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/sparques/irservo/actuator"
	"github.com/sparques/irservo/nec"
	"github.com/sparques/irservo/timer"
)

type fakeServo struct {
	moves []actuator.Position
	err   error
}

func (f *fakeServo) Move(p actuator.Position) error {
	if f.err != nil {
		return f.err
	}
	f.moves = append(f.moves, p)
	return nil
}

type fakeToggler struct{ n int }

func (f *fakeToggler) Toggle() { f.n++ }

type logRecorder []string

func (l *logRecorder) Printf(format string, args ...any) {
	*l = append(*l, fmt.Sprintf(format, args...))
}

func TestDispatchDefaultTable(t *testing.T) {
	c := qt.New(t)

	for _, tc := range []struct {
		code  uint32
		moves []actuator.Position
		flips int
	}{
		{CodeChannelUp, []actuator.Position{actuator.PositionA}, 0},
		{CodeChannelDown, []actuator.Position{actuator.PositionB}, 0},
		{CodeVolumeUp, []actuator.Position{actuator.PositionC}, 0},
		{CodeVolumeDown, nil, 1},
	} {
		c.Run(fmt.Sprintf("%08X", tc.code), func(c *qt.C) {
			servo, ind := new(fakeServo), new(fakeToggler)
			d := New(nec.NewSlot(), servo, ind, Config{})
			_, err := d.Dispatch(tc.code)
			c.Assert(err, qt.IsNil)
			c.Assert(servo.moves, qt.DeepEquals, tc.moves)
			c.Assert(ind.n, qt.Equals, tc.flips)
		})
	}
}

func TestDispatchUnknownCode(t *testing.T) {
	c := qt.New(t)

	servo, ind := new(fakeServo), new(fakeToggler)
	d := New(nec.NewSlot(), servo, ind, Config{})
	for _, code := range []uint32{0, 0xFFFFFFFF, 0x20DF00FE, 0x20DFC03E} {
		a, err := d.Dispatch(code)
		c.Assert(errors.Is(err, ErrUnknownCode), qt.IsTrue)
		c.Assert(a, qt.Equals, Action{})
	}
	c.Assert(servo.moves, qt.HasLen, 0)
	c.Assert(ind.n, qt.Equals, 0)
}

func TestDispatchMoveError(t *testing.T) {
	c := qt.New(t)

	boom := errors.New("boom")
	d := New(nec.NewSlot(), &fakeServo{err: boom}, new(fakeToggler), Config{})
	_, err := d.Dispatch(CodeVolumeUp)
	c.Assert(errors.Is(err, boom), qt.IsTrue)
	c.Assert(err, qt.ErrorMatches, `dispatch: could not move to C: boom`)
}

func TestStep(t *testing.T) {
	c := qt.New(t)

	var (
		slot    = nec.NewSlot()
		servo   = new(fakeServo)
		ind     = new(fakeToggler)
		msg     logRecorder
		results []Result
	)
	d := New(slot, servo, ind, Config{
		Logger:  &msg,
		Observe: func(r Result) { results = append(results, r) },
	})

	ctx := context.Background()
	slot.Publish(0x12345678)
	c.Assert(d.Step(ctx), qt.IsNil)
	slot.Publish(CodeChannelDown)
	c.Assert(d.Step(ctx), qt.IsNil)

	c.Assert(results, qt.HasLen, 2)
	c.Assert(errors.Is(results[0].Err, ErrUnknownCode), qt.IsTrue)
	c.Assert(results[1].Err, qt.IsNil)
	c.Assert(results[1].Action, qt.Equals, Action{Kind: Move, Position: actuator.PositionB})
	c.Assert(servo.moves, qt.DeepEquals, []actuator.Position{actuator.PositionB})
	c.Assert(msg, qt.HasLen, 2)
	c.Assert(msg[0], qt.Matches, `dispatch: ignoring 0x12345678 .*valid=false\)`)
}

func TestStepLostTimeBase(t *testing.T) {
	c := qt.New(t)

	var (
		slot    = nec.NewSlot()
		lost    = fmt.Errorf("actuator: could not drive servo: %w tick: bus fault", timer.ErrRestore)
		results []Result
	)
	d := New(slot, &fakeServo{err: lost}, new(fakeToggler), Config{
		Observe: func(r Result) { results = append(results, r) },
	})

	slot.Publish(CodeChannelUp)
	err := d.Step(context.Background())
	c.Assert(err, qt.ErrorIs, timer.ErrRestore)
	c.Assert(results, qt.HasLen, 1)
	c.Assert(results[0].Err, qt.ErrorIs, timer.ErrRestore)

	// an ordinary move failure does not stop the loop
	d = New(slot, &fakeServo{err: errors.New("jammed")}, new(fakeToggler), Config{})
	slot.Publish(CodeChannelUp)
	c.Assert(d.Step(context.Background()), qt.IsNil)
}

func TestRunStopsOnCancel(t *testing.T) {
	c := qt.New(t)

	slot := nec.NewSlot()
	servo, ind := new(fakeServo), new(fakeToggler)
	done := make(chan Result, 4)
	d := New(slot, servo, ind, Config{Observe: func(r Result) { done <- r }})

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- d.Run(ctx) }()

	slot.Publish(CodeVolumeDown)
	select {
	case r := <-done:
		c.Assert(r.Action.Kind, qt.Equals, Toggle)
	case <-time.After(5 * time.Second):
		c.Fatal("timeout waiting for dispatch")
	}

	cancel()
	c.Assert(<-errc, qt.Equals, context.Canceled)
	c.Assert(ind.n, qt.Equals, 1)
}
