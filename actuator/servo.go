// Package actuator drives the servo and the indicator.
//
// The servo shares its timer with the IR Time Base. A move borrows the
// timer in PwmMode for a fixed dwell and then hands it back in exactly the
// tick configuration it found. No frame can be decoded during the dwell:
// the decoder is suspended and anything the remote sends is lost.
package actuator

import (
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/exp/constraints"

	"github.com/sparques/irservo"
	"github.com/sparques/irservo/timer"
)

const (
	DefaultDwell    = time.Second
	DefaultMinWidth = 500 * time.Microsecond
	DefaultMaxWidth = 2500 * time.Microsecond
)

// Position is one of the preset servo positions.
type Position uint8

const (
	PositionA Position = iota // short pulse
	PositionB                 // medium pulse
	PositionC                 // long pulse

	numPositions
)

func (p Position) String() string {
	switch p {
	case PositionA:
		return "A"
	case PositionB:
		return "B"
	case PositionC:
		return "C"
	}
	return fmt.Sprintf("Position(%d)", uint8(p))
}

// DefaultWidths are the pulse widths of positions A, B and C.
var DefaultWidths = [numPositions]time.Duration{
	750 * time.Microsecond,
	1500 * time.Microsecond,
	2250 * time.Microsecond,
}

// Config configures a Driver. Zero fields take the defaults.
type Config struct {
	// Period is the PWM frame; default timer.DefaultPWMPeriod.
	Period time.Duration
	// Dwell is how long a position is held; default DefaultDwell.
	Dwell time.Duration
	// MinWidth and MaxWidth bound every commanded pulse.
	MinWidth time.Duration
	MaxWidth time.Duration
	// Widths maps positions to pulse widths; default DefaultWidths.
	Widths [numPositions]time.Duration
	// Sleep holds the dwell; default time.Sleep.
	Sleep func(time.Duration)
	// Logger defaults to irservo.NopLogger.
	Logger irservo.Logger
}

// Driver moves the servo by borrowing the shared timer.
type Driver struct {
	timer *timer.Handle
	cfg   Config

	moves atomic.Uint32
	last  atomic.Int64
}

// New returns a Driver owning moves on h.
func New(h *timer.Handle, cfg Config) *Driver {
	if cfg.Period == 0 {
		cfg.Period = timer.DefaultPWMPeriod
	}
	if cfg.Dwell == 0 {
		cfg.Dwell = DefaultDwell
	}
	if cfg.MinWidth == 0 {
		cfg.MinWidth = DefaultMinWidth
	}
	if cfg.MaxWidth == 0 {
		cfg.MaxWidth = DefaultMaxWidth
	}
	if cfg.Widths == ([numPositions]time.Duration{}) {
		cfg.Widths = DefaultWidths
	}
	if cfg.Sleep == nil {
		cfg.Sleep = time.Sleep
	}
	if cfg.Logger == nil {
		cfg.Logger = irservo.NopLogger
	}
	return &Driver{timer: h, cfg: cfg}
}

// Width returns the pulse width of p.
func (d *Driver) Width(p Position) (time.Duration, error) {
	if p >= numPositions {
		return 0, fmt.Errorf("actuator: invalid position %v", p)
	}
	return d.cfg.Widths[p], nil
}

// Validate checks that every preset position can be programmed.
func (d *Driver) Validate() error {
	if d.cfg.MinWidth > d.cfg.MaxWidth {
		return fmt.Errorf("actuator: min width %v above max width %v", d.cfg.MinWidth, d.cfg.MaxWidth)
	}
	for p := Position(0); p < numPositions; p++ {
		w := clamp(d.cfg.Widths[p], d.cfg.MinWidth, d.cfg.MaxWidth)
		if _, err := timer.PWMConfig(d.cfg.Period, w); err != nil {
			return fmt.Errorf("actuator: position %v: %w", p, err)
		}
	}
	return nil
}

// Move drives the servo to p and holds it for the dwell.
func (d *Driver) Move(p Position) error {
	w, err := d.Width(p)
	if err != nil {
		return err
	}
	return d.MoveWidth(w)
}

// MoveWidth emits pulses of width, clamped to [MinWidth, MaxWidth], for
// the dwell, then restores the Time Base. It blocks for the whole dwell.
func (d *Driver) MoveWidth(width time.Duration) error {
	width = clamp(width, d.cfg.MinWidth, d.cfg.MaxWidth)
	cfg, err := timer.PWMConfig(d.cfg.Period, width)
	if err != nil {
		return fmt.Errorf("actuator: %w", err)
	}
	d.cfg.Logger.Printf("actuator: %v for %v", cfg, d.cfg.Dwell)
	err = d.timer.With(cfg, func() {
		d.cfg.Sleep(d.cfg.Dwell)
	})
	if err != nil {
		return fmt.Errorf("actuator: could not drive servo: %w", err)
	}
	d.moves.Add(1)
	d.last.Store(int64(cfg.Width()))
	return nil
}

// Moves returns the number of completed moves.
func (d *Driver) Moves() uint32 { return d.moves.Load() }

// LastWidth returns the quantized width of the last completed move.
func (d *Driver) LastWidth() time.Duration { return time.Duration(d.last.Load()) }

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
