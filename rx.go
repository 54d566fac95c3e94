//go:build tinygo

package irservo

import (
	. "machine"
)

// RxDevice listens to a demodulating IR receiver. The receiver output is
// wired to two pins: one interrupting on rising edges, the other on falling
// edges, each latching its own flag. If both flags are pending when the
// latch is serviced the handler sees EdgeBoth, which decoders treat as a
// noise fault.
type RxDevice struct {
	rise    Pin
	fall    Pin
	latch   EdgeLatch
	handler EdgeHandler
}

// NewRxDevice configures rise and fall as inputs and returns a device
// feeding h. Call Start to enable the interrupts.
func NewRxDevice(rise, fall Pin, h EdgeHandler) *RxDevice {
	// the most common receivers have a pull up pin builtin
	rise.Configure(PinConfig{Mode: PinInput})
	fall.Configure(PinConfig{Mode: PinInput})
	return &RxDevice{
		rise:    rise,
		fall:    fall,
		handler: h,
	}
}

func (rx *RxDevice) risingHandler(Pin) {
	rx.latch.Latch(EdgeRising)
	rx.latch.Service(rx.handler)
}

func (rx *RxDevice) fallingHandler(Pin) {
	rx.latch.Latch(EdgeFalling)
	rx.latch.Service(rx.handler)
}

// Start clears anything latched during power-up and sets the interrupt
// handlers.
func (rx *RxDevice) Start() error {
	rx.latch.Clear()
	if err := rx.rise.SetInterrupt(PinRising, rx.risingHandler); err != nil {
		return err
	}
	return rx.fall.SetInterrupt(PinFalling, rx.fallingHandler)
}

// Stop disables the interrupt handlers.
func (rx *RxDevice) Stop() {
	rx.rise.SetInterrupt(PinRising, nil)
	rx.fall.SetInterrupt(PinFalling, nil)
}
