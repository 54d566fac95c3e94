// Package controller assembles the IR servo controller from its hardware:
// the shared timer, the Time Base it drives, the indicator pin and the
// edge interrupts.
package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/sparques/irservo"
	"github.com/sparques/irservo/actuator"
	"github.com/sparques/irservo/dispatch"
	"github.com/sparques/irservo/nec"
	"github.com/sparques/irservo/timer"
)

// Hardware is what a board provides.
type Hardware struct {
	// Timer is the peripheral shared by the Time Base and the servo PWM.
	Timer timer.Peripheral
	// TimeBase is advanced by Timer's period interrupt in TickMode.
	TimeBase *timer.TimeBase
	// LED is the indicator output.
	LED actuator.Pin
	// BlinkSleep paces the fault pattern. It runs in interrupt context.
	BlinkSleep func(time.Duration)
	// DwellSleep holds the servo position; default time.Sleep.
	DwellSleep func(time.Duration)
}

// Config configures the controller. Zero fields take the defaults; the
// zero Policy is nec.ResyncRestart.
type Config struct {
	// TickPeriod defaults to timer.DefaultTickPeriod.
	TickPeriod time.Duration
	Policy     nec.Policy
	Actuator   actuator.Config
	Table      dispatch.Table
	Logger     irservo.Logger
	Observe    func(dispatch.Result)
}

// Controller is an assembled controller. Its HandleEdges method is the
// edge interrupt handler; Run is the foreground loop.
type Controller struct {
	Slot       *nec.Slot
	Decoder    *nec.StateMachine
	Timer      *timer.Handle
	Servo      *actuator.Driver
	Indicator  *actuator.Indicator
	Dispatcher *dispatch.Dispatcher
}

var _ irservo.EdgeHandler = (*Controller)(nil)

// New validates cfg against the timer, programs the Time Base and returns
// the controller. Errors here are boot failures.
func New(hw Hardware, cfg Config) (*Controller, error) {
	if cfg.TickPeriod == 0 {
		cfg.TickPeriod = timer.DefaultTickPeriod
	}
	if cfg.Logger == nil {
		cfg.Logger = irservo.NopLogger
	}
	if cfg.Actuator.Logger == nil {
		cfg.Actuator.Logger = cfg.Logger
	}
	if cfg.Actuator.Sleep == nil {
		cfg.Actuator.Sleep = hw.DwellSleep
	}

	tick, err := timer.TickConfig(cfg.TickPeriod)
	if err != nil {
		return nil, fmt.Errorf("controller: invalid time base: %w", err)
	}
	if tick.Period() != nec.TickPeriod {
		return nil, fmt.Errorf("controller: time base period %v does not match decoder thresholds (%v)", tick.Period(), nec.TickPeriod)
	}

	var (
		ctl = &Controller{Slot: nec.NewSlot()}
		ind = actuator.NewIndicator(hw.LED)
	)
	ind.Sleep = hw.BlinkSleep
	ctl.Indicator = ind
	ctl.Decoder = nec.NewStateMachine(nec.Config{Policy: cfg.Policy}, hw.TimeBase, ind, ctl.Slot)

	ctl.Timer, err = timer.NewHandle(hw.Timer, tick, ctl.Decoder)
	if err != nil {
		return nil, fmt.Errorf("controller: could not start time base: %w", err)
	}

	ctl.Servo = actuator.New(ctl.Timer, cfg.Actuator)
	if err := ctl.Servo.Validate(); err != nil {
		return nil, fmt.Errorf("controller: %w", err)
	}

	ctl.Dispatcher = dispatch.New(ctl.Slot, ctl.Servo, ind, dispatch.Config{
		Table:   cfg.Table,
		Logger:  cfg.Logger,
		Observe: cfg.Observe,
	})
	return ctl, nil
}

// HandleEdges implements irservo.EdgeHandler.
func (ctl *Controller) HandleEdges(e irservo.EdgeFlags) {
	ctl.Decoder.HandleEdges(e)
}

// Run is the foreground command loop. It returns when ctx is done.
func (ctl *Controller) Run(ctx context.Context) error {
	return ctl.Dispatcher.Run(ctx)
}
