package timer

import (
	"fmt"
	"sync"
)

// Peripheral is the hardware side of the timer. Implementations program
// the registers in Configure with the period interrupt masked; SetIRQ
// unmasks it. Config reads the configuration back from the hardware.
type Peripheral interface {
	Configure(Config) error
	SetIRQ(enabled bool)
	Config() Config
}

// Listener is notified when the timer changes mode. Before the timer is
// reprogrammed, with its interrupt masked, listeners are told ModeOff; once
// the new configuration has been read back and the interrupt restored they
// are told the new mode.
type Listener interface {
	TimerModeChanged(Mode)
}

// RestoreAttempts is how many times With tries to put the saved
// configuration back before giving up.
const RestoreAttempts = 3

// Handle is the exclusive owner of a Peripheral. All reconfiguration goes
// through Transition, so neither consumer ever sees a half-programmed
// timer.
type Handle struct {
	mu        sync.Mutex
	p         Peripheral
	cur       Config
	listeners []Listener
}

// NewHandle takes ownership of p and programs it with initial.
func NewHandle(p Peripheral, initial Config, ls ...Listener) (*Handle, error) {
	h := &Handle{p: p, listeners: ls}
	if err := h.apply(initial); err != nil {
		return nil, err
	}
	h.cur = initial
	return h, nil
}

// Config returns the configuration the handle last applied.
func (h *Handle) Config() Config {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cur
}

// Mode returns the current mode.
func (h *Handle) Mode() Mode {
	return h.Config().Mode
}

// Transition reprograms the timer to cfg. If the readback does not match
// cfg, the previous configuration is put back and ErrReadback returned.
func (h *Handle) Transition(cfg Config) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.transition(cfg)
}

// With switches the timer to cfg, runs fn, and restores the configuration
// that was active before, exactly. If the saved configuration cannot be
// programmed after RestoreAttempts tries, the timer is switched off and the
// error wraps ErrRestore: the caller has lost its Time Base.
func (h *Handle) With(cfg Config, fn func()) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	saved := h.cur
	if err := h.transition(cfg); err != nil {
		return err
	}
	fn()
	return h.restore(saved)
}

func (h *Handle) restore(saved Config) error {
	var err error
	for i := 0; i < RestoreAttempts; i++ {
		if err = h.apply(saved); err == nil {
			h.cur = saved
			return nil
		}
	}
	// never leave the borrowed mode running
	off := Config{Mode: ModeOff}
	if oerr := h.apply(off); oerr == nil {
		h.cur = off
	}
	return fmt.Errorf("%w %v: %w", ErrRestore, saved, err)
}

func (h *Handle) transition(cfg Config) error {
	prev := h.cur
	if err := h.apply(cfg); err != nil {
		if rerr := h.apply(prev); rerr != nil {
			return fmt.Errorf("%w (restore failed: %v)", err, rerr)
		}
		return err
	}
	h.cur = cfg
	return nil
}

func (h *Handle) apply(cfg Config) error {
	h.p.SetIRQ(false)
	h.notify(ModeOff)
	if err := h.p.Configure(cfg); err != nil {
		return fmt.Errorf("timer: could not configure %v: %w", cfg, err)
	}
	if got := h.p.Config(); got != cfg {
		return fmt.Errorf("%w: want %v, got %v", ErrReadback, cfg, got)
	}
	if cfg.IRQ {
		h.p.SetIRQ(true)
	}
	if cfg.Mode != ModeOff {
		h.notify(cfg.Mode)
	}
	return nil
}

func (h *Handle) notify(m Mode) {
	for _, l := range h.listeners {
		l.TimerModeChanged(m)
	}
}
