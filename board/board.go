//go:build tinygo

// Package board binds the controller to real pins.
//
// The timer is emulated on top of the TinyGo runtime: TickMode is a
// goroutine advancing the Time Base every period while the interrupt is
// unmasked, and PwmMode drives the servo pin through a hardware PWM slice.
package board

import (
	"context"
	"fmt"
	"machine"
	"sync"
	"time"

	"tinygo.org/x/drivers/servo"

	"github.com/sparques/irservo"
	"github.com/sparques/irservo/controller"
	"github.com/sparques/irservo/timer"
)

// Config names the pins. The receiver output is wired to both RisePin and
// FallPin.
type Config struct {
	RisePin  machine.Pin
	FallPin  machine.Pin
	ServoPin machine.Pin
	ServoPWM servo.PWM
	LEDPin   machine.Pin
}

// Board is the running hardware. It implements timer.Peripheral.
type Board struct {
	cfg   Config
	servo servo.Servo
	rx    *irservo.RxDevice
	tb    timer.TimeBase

	mu  sync.Mutex
	cur timer.Config
	irq bool

	Controller *controller.Controller
}

var _ timer.Peripheral = (*Board)(nil)

// New configures the pins, programs the Time Base and assembles the
// controller. Edge interrupts stay off until Start.
func New(cfg Config, ccfg controller.Config) (*Board, error) {
	cfg.LEDPin.Configure(machine.PinConfig{Mode: machine.PinOutput})

	s, err := servo.New(cfg.ServoPWM, cfg.ServoPin)
	if err != nil {
		return nil, fmt.Errorf("board: servo on pin %d: %w", cfg.ServoPin, err)
	}
	s.SetMicroseconds(0)

	b := &Board{cfg: cfg, servo: s}
	if ccfg.Logger == nil {
		ccfg.Logger = Console
	}
	b.Controller, err = controller.New(controller.Hardware{
		Timer:      b,
		TimeBase:   &b.tb,
		LED:        cfg.LEDPin,
		BlinkSleep: irservo.Spin,
		DwellSleep: time.Sleep,
	}, ccfg)
	if err != nil {
		return nil, err
	}
	b.rx = irservo.NewRxDevice(cfg.RisePin, cfg.FallPin, b.Controller)
	go b.tick()
	return b, nil
}

// Start enables the edge interrupts.
func (b *Board) Start() error {
	if err := b.rx.Start(); err != nil {
		return fmt.Errorf("board: edge interrupts: %w", err)
	}
	return nil
}

// Run is the foreground loop.
func (b *Board) Run(ctx context.Context) error {
	return b.Controller.Run(ctx)
}

// Configure implements timer.Peripheral.
func (b *Board) Configure(cfg timer.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch cfg.Mode {
	case timer.PwmMode:
		us := cfg.Width() / time.Microsecond
		if us > 1<<15-1 {
			return fmt.Errorf("board: pulse width %v too long", cfg.Width())
		}
		b.servo.SetMicroseconds(int16(us))
	default:
		if b.cur.Mode == timer.PwmMode {
			// release the servo with the pin low
			b.servo.SetMicroseconds(0)
		}
	}
	b.cur = cfg
	return nil
}

// SetIRQ implements timer.Peripheral.
func (b *Board) SetIRQ(on bool) {
	b.mu.Lock()
	b.irq = on
	b.mu.Unlock()
}

// Config implements timer.Peripheral.
func (b *Board) Config() timer.Config {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cur
}

func (b *Board) ticking() (time.Duration, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cur.Mode != timer.TickMode || !b.cur.IRQ || !b.irq {
		return 0, false
	}
	return b.cur.Period(), true
}

func (b *Board) tick() {
	next := time.Now()
	for {
		period, ok := b.ticking()
		if !ok {
			time.Sleep(timer.DefaultTickPeriod)
			next = time.Now()
			continue
		}
		next = next.Add(period)
		time.Sleep(time.Until(next))
		if _, ok := b.ticking(); ok {
			b.tb.Tick()
		}
	}
}
