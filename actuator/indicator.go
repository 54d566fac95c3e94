package actuator

import (
	"sync/atomic"
	"time"
)

const (
	// FaultToggles is the number of toggles in the fault pattern.
	FaultToggles = 3
	// FaultBlinkInterval separates the fault toggles.
	FaultBlinkInterval = 250 * time.Millisecond
)

// Pin is a digital output. machine.Pin satisfies it.
type Pin interface {
	Set(high bool)
}

// Indicator is the single visible output: toggled by command, forced on
// by a mid-frame header, blinked by a noise fault.
type Indicator struct {
	pin     Pin
	state   atomic.Bool
	toggles atomic.Uint32

	// Sleep waits between fault toggles. The fault pattern is produced from
	// the edge interrupt, so on hardware this must be a busy wait.
	Sleep func(time.Duration)
	// Interval separates fault toggles; zero means FaultBlinkInterval.
	Interval time.Duration
}

// NewIndicator drives pin low and returns an Indicator for it.
func NewIndicator(pin Pin) *Indicator {
	pin.Set(false)
	return &Indicator{pin: pin}
}

func (ind *Indicator) set(on bool) {
	ind.state.Store(on)
	ind.pin.Set(on)
}

// Toggle inverts the output.
func (ind *Indicator) Toggle() {
	ind.toggles.Add(1)
	ind.set(!ind.state.Load())
}

// On forces the output high.
func (ind *Indicator) On() { ind.set(true) }

// Blink toggles the output n times, pausing between toggles.
func (ind *Indicator) Blink(n int) {
	interval := ind.Interval
	if interval == 0 {
		interval = FaultBlinkInterval
	}
	for i := 0; i < n; i++ {
		if i > 0 && ind.Sleep != nil {
			ind.Sleep(interval)
		}
		ind.Toggle()
	}
}

// FaultBlink plays the fault pattern.
func (ind *Indicator) FaultBlink() { ind.Blink(FaultToggles) }

// State reports the output level.
func (ind *Indicator) State() bool { return ind.state.Load() }

// Toggles returns how many times the output was toggled.
func (ind *Indicator) Toggles() uint32 { return ind.toggles.Load() }
