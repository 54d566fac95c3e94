// Package timer models the single hardware timer the controller shares
// between two jobs: a free-running tick source for IR decoding (TickMode)
// and a PWM pulse generator for the servo (PwmMode).
package timer

import (
	"errors"
	"fmt"
	"time"
)

const (
	// DefaultTickPeriod is the Time Base period used for decoding.
	DefaultTickPeriod = 100 * time.Microsecond
	// DefaultPWMPeriod is the standard servo frame.
	DefaultPWMPeriod = 20 * time.Millisecond
)

var (
	ErrPeriodRange = errors.New("timer: period out of range")
	ErrWidthRange  = errors.New("timer: pulse width out of range")
	ErrReadback    = errors.New("timer: configuration readback mismatch")
	ErrRestore     = errors.New("timer: could not restore")
)

// Mode is the job the timer is configured for.
type Mode uint8

const (
	ModeOff Mode = iota
	TickMode
	PwmMode
)

func (m Mode) String() string {
	switch m {
	case ModeOff:
		return "off"
	case TickMode:
		return "tick"
	case PwmMode:
		return "pwm"
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// Clock selects the timer's input clock.
type Clock uint8

const (
	// ClockSMCLK is the 1MHz sub-main clock, fine enough for 100us ticks.
	ClockSMCLK Clock = iota
	// ClockACLK is the 32768Hz auxiliary clock, slow enough that a 20ms
	// servo frame fits in 16 bits.
	ClockACLK
)

// Hz returns the clock frequency.
func (c Clock) Hz() uint32 {
	if c == ClockACLK {
		return 32768
	}
	return 1000000
}

// Config is a complete timer configuration. Configs are compared with ==:
// a restored configuration must equal the saved one field for field.
type Config struct {
	Mode  Mode
	Clock Clock
	// Top is the last count before the counter wraps; the period is Top+1
	// counts.
	Top uint16
	// Compare is the count at which the PWM output is reset. Unused in
	// TickMode.
	Compare uint16
	// IRQ enables the period interrupt. Only meaningful in TickMode.
	IRQ bool
}

// counts converts d to whole counts of c, rounding to nearest.
func counts(d time.Duration, c Clock) uint64 {
	return (uint64(d)*uint64(c.Hz()) + uint64(time.Second)/2) / uint64(time.Second)
}

// TickConfig returns a TickMode configuration with its interrupt enabled.
func TickConfig(period time.Duration) (Config, error) {
	n := counts(period, ClockSMCLK)
	if period <= 0 || n == 0 || n > 1<<16 {
		return Config{}, fmt.Errorf("%w: tick period %v", ErrPeriodRange, period)
	}
	return Config{
		Mode:  TickMode,
		Clock: ClockSMCLK,
		Top:   uint16(n - 1),
		IRQ:   true,
	}, nil
}

// PWMConfig returns a PwmMode configuration producing a pulse of width
// every period. The period interrupt stays masked.
func PWMConfig(period, width time.Duration) (Config, error) {
	n := counts(period, ClockACLK)
	if period <= 0 || n == 0 || n > 1<<16 {
		return Config{}, fmt.Errorf("%w: pwm period %v", ErrPeriodRange, period)
	}
	w := counts(width, ClockACLK)
	if width < 0 || w > n {
		return Config{}, fmt.Errorf("%w: %v in %v", ErrWidthRange, width, period)
	}
	return Config{
		Mode:    PwmMode,
		Clock:   ClockACLK,
		Top:     uint16(n - 1),
		Compare: uint16(w),
	}, nil
}

func (c Config) duration(n uint64) time.Duration {
	return time.Duration(n * uint64(time.Second) / uint64(c.Clock.Hz()))
}

// Period returns the quantized period.
func (c Config) Period() time.Duration {
	return c.duration(uint64(c.Top) + 1)
}

// Width returns the quantized PWM pulse width.
func (c Config) Width() time.Duration {
	return c.duration(uint64(c.Compare))
}

func (c Config) String() string {
	switch c.Mode {
	case TickMode:
		return fmt.Sprintf("tick{period=%v irq=%v}", c.Period(), c.IRQ)
	case PwmMode:
		return fmt.Sprintf("pwm{period=%v width=%v}", c.Period(), c.Width())
	}
	return c.Mode.String()
}
