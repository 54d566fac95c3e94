package controller

import (
	"context"
	"errors"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/sparques/irservo"
	"github.com/sparques/irservo/actuator"
	"github.com/sparques/irservo/dispatch"
	"github.com/sparques/irservo/nec"
	"github.com/sparques/irservo/timer"
)

type fakeTimer struct {
	cfg timer.Config
	irq bool
	err error
	// tickErr rejects TickMode only
	tickErr error
}

func (f *fakeTimer) Configure(cfg timer.Config) error {
	if f.err != nil {
		return f.err
	}
	if f.tickErr != nil && cfg.Mode == timer.TickMode {
		return f.tickErr
	}
	f.cfg = cfg
	return nil
}
func (f *fakeTimer) SetIRQ(on bool)       { f.irq = on }
func (f *fakeTimer) Config() timer.Config { return f.cfg }

type pinRecorder struct{ levels []bool }

func (p *pinRecorder) Set(high bool) { p.levels = append(p.levels, high) }

func testHardware() (Hardware, *fakeTimer, *pinRecorder, *[]time.Duration) {
	var (
		ft    = new(fakeTimer)
		led   = new(pinRecorder)
		slept []time.Duration
	)
	return Hardware{
		Timer:      ft,
		TimeBase:   new(timer.TimeBase),
		LED:        led,
		BlinkSleep: func(d time.Duration) { slept = append(slept, d) },
		DwellSleep: func(time.Duration) {},
	}, ft, led, &slept
}

func TestNew(t *testing.T) {
	c := qt.New(t)
	hw, ft, led, _ := testHardware()

	ctl, err := New(hw, Config{})
	c.Assert(err, qt.IsNil)

	c.Assert(ft.cfg.Mode, qt.Equals, timer.TickMode)
	c.Assert(ft.cfg.Top, qt.Equals, uint16(99))
	c.Assert(ft.irq, qt.IsTrue)
	c.Assert(ctl.Timer.Mode(), qt.Equals, timer.TickMode)
	c.Assert(ctl.Decoder.Suspended(), qt.IsFalse)
	c.Assert(ctl.Decoder.Decoder(), qt.Equals, nec.NewDecoder())
	c.Assert(led.levels, qt.DeepEquals, []bool{false})
}

func TestNewErrors(t *testing.T) {
	c := qt.New(t)

	c.Run("tick period", func(c *qt.C) {
		hw, _, _, _ := testHardware()
		_, err := New(hw, Config{TickPeriod: 200 * time.Microsecond})
		c.Assert(err, qt.ErrorMatches, `controller: time base period 200µs does not match decoder thresholds \(100µs\)`)
	})

	c.Run("tick range", func(c *qt.C) {
		hw, _, _, _ := testHardware()
		_, err := New(hw, Config{TickPeriod: time.Second})
		c.Assert(err, qt.ErrorIs, timer.ErrPeriodRange)
	})

	c.Run("configure", func(c *qt.C) {
		hw, ft, _, _ := testHardware()
		ft.err = errors.New("bus fault")
		_, err := New(hw, Config{})
		c.Assert(err, qt.ErrorMatches, `controller: could not start time base: .*bus fault`)
	})

	c.Run("widths", func(c *qt.C) {
		hw, _, _, _ := testHardware()
		_, err := New(hw, Config{Actuator: actuator.Config{Period: time.Millisecond}})
		c.Assert(err, qt.ErrorIs, timer.ErrWidthRange)
	})
}

func TestHandleEdges(t *testing.T) {
	c := qt.New(t)
	hw, _, led, slept := testHardware()

	ctl, err := New(hw, Config{})
	c.Assert(err, qt.IsNil)

	ctl.HandleEdges(irservo.EdgeBoth)
	c.Assert(ctl.Decoder.Stats().Faults, qt.Equals, uint32(1))
	c.Assert(led.levels, qt.DeepEquals, []bool{false, true, false, true})
	c.Assert(*slept, qt.DeepEquals, []time.Duration{actuator.FaultBlinkInterval, actuator.FaultBlinkInterval})
}

func TestRun(t *testing.T) {
	c := qt.New(t)
	hw, ft, _, _ := testHardware()

	var moved []timer.Config
	hw.DwellSleep = func(time.Duration) { moved = append(moved, ft.cfg) }

	done := make(chan struct{})
	ctl, err := New(hw, Config{
		Observe: func(r dispatch.Result) {
			c.Check(r.Err, qt.IsNil)
			close(done)
		},
	})
	c.Assert(err, qt.IsNil)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- ctl.Run(ctx) }()

	ctl.Slot.Publish(nec.Make(0x0004, 0x01))
	<-done
	cancel()
	c.Assert(<-errc, qt.ErrorIs, context.Canceled)

	c.Assert(moved, qt.HasLen, 1)
	c.Assert(moved[0].Mode, qt.Equals, timer.PwmMode)
	c.Assert(moved[0].Compare, qt.Equals, uint16(49))
	c.Assert(ft.cfg.Mode, qt.Equals, timer.TickMode)
}

func TestRunStopsWhenTimeBaseLost(t *testing.T) {
	c := qt.New(t)
	hw, ft, _, _ := testHardware()

	var results []dispatch.Result
	ctl, err := New(hw, Config{
		Observe: func(r dispatch.Result) { results = append(results, r) },
	})
	c.Assert(err, qt.IsNil)

	ft.tickErr = errors.New("bus fault")
	ctl.Slot.Publish(nec.Make(0x0004, 0x00))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = ctl.Run(ctx)
	c.Assert(err, qt.ErrorIs, timer.ErrRestore)
	c.Assert(results, qt.HasLen, 1)

	// the servo output is off and no edge is decoded
	c.Assert(ft.cfg.Mode, qt.Equals, timer.ModeOff)
	c.Assert(ctl.Timer.Mode(), qt.Equals, timer.ModeOff)
	c.Assert(ctl.Decoder.Suspended(), qt.IsTrue)
	ctl.HandleEdges(irservo.EdgeFalling)
	c.Assert(ctl.Decoder.Stats().Dropped, qt.Equals, uint32(1))
}
