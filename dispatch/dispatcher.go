package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/sparques/irservo"
	"github.com/sparques/irservo/actuator"
	"github.com/sparques/irservo/nec"
	"github.com/sparques/irservo/timer"
)

var ErrUnknownCode = errors.New("dispatch: unknown code")

// Mover moves the servo. *actuator.Driver implements it.
type Mover interface {
	Move(actuator.Position) error
}

// Toggler toggles the indicator. *actuator.Indicator implements it.
type Toggler interface {
	Toggle()
}

// Result describes one dispatched frame.
type Result struct {
	Code   uint32
	Action Action
	Err    error
}

func (r Result) String() string {
	if r.Err != nil {
		return fmt.Sprintf("%#08x: %v", r.Code, r.Err)
	}
	return fmt.Sprintf("%#08x: %v", r.Code, r.Action)
}

// Config configures a Dispatcher.
type Config struct {
	// Table defaults to DefaultTable.
	Table Table
	// Logger defaults to irservo.NopLogger.
	Logger irservo.Logger
	// Observe, if set, is called after every dispatched frame.
	Observe func(Result)
}

// Dispatcher waits for decoded frames and performs their actions.
type Dispatcher struct {
	slot    *nec.Slot
	table   Table
	servo   Mover
	ind     Toggler
	msg     irservo.Logger
	observe func(Result)
}

// New returns a Dispatcher consuming frames from slot.
func New(slot *nec.Slot, servo Mover, ind Toggler, cfg Config) *Dispatcher {
	if cfg.Table == nil {
		cfg.Table = DefaultTable
	}
	if cfg.Logger == nil {
		cfg.Logger = irservo.NopLogger
	}
	return &Dispatcher{
		slot:    slot,
		table:   cfg.Table,
		servo:   servo,
		ind:     ind,
		msg:     cfg.Logger,
		observe: cfg.Observe,
	}
}

// Dispatch performs the action bound to code. Unknown codes return
// ErrUnknownCode and leave every output alone.
func (d *Dispatcher) Dispatch(code uint32) (Action, error) {
	a, ok := d.table.Lookup(code)
	if !ok {
		return Action{}, fmt.Errorf("%w %#08x", ErrUnknownCode, code)
	}
	switch a.Kind {
	case Move:
		if err := d.servo.Move(a.Position); err != nil {
			return a, fmt.Errorf("dispatch: could not move to %v: %w", a.Position, err)
		}
	case Toggle:
		d.ind.Toggle()
	default:
		return a, fmt.Errorf("dispatch: invalid action %v for %#08x", a.Kind, code)
	}
	return a, nil
}

// Step waits for the next frame and dispatches it. The decoder re-arms
// itself before publishing, so reception continues while the action runs,
// up to the moment the servo borrows the timer. Dispatch failures are
// logged and reported through Observe. Step fails when ctx is done, or when
// a move lost the Time Base (timer.ErrRestore): nothing can be decoded
// after that.
func (d *Dispatcher) Step(ctx context.Context) error {
	code, err := d.slot.Wait(ctx)
	if err != nil {
		return err
	}

	a, err := d.Dispatch(code)
	res := Result{Code: code, Action: a, Err: err}
	switch {
	case errors.Is(err, ErrUnknownCode):
		valid, addr, cmd := nec.Split(code)
		d.msg.Printf("dispatch: ignoring %#08x (addr=%#04x cmd=%#02x valid=%v)", code, addr, cmd, valid)
	case err != nil:
		d.msg.Printf("dispatch: %+v", err)
	default:
		d.msg.Printf("dispatch: %v", res)
	}
	if d.observe != nil {
		d.observe(res)
	}
	if errors.Is(err, timer.ErrRestore) {
		return err
	}
	return nil
}

// Run dispatches frames until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		if err := d.Step(ctx); err != nil {
			return err
		}
	}
}
