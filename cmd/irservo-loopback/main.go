//go:build rp2040

// Command irservo-loopback turns a Pico with an IR LED on GP17 into a bench
// remote: it sends every recognized command in turn, each followed by a
// couple of repeat codes, pausing long enough for the servo dwell.
package main

import (
	"machine"
	"time"

	"github.com/sparques/irservo"
	"github.com/sparques/irservo/dispatch"
	"github.com/sparques/irservo/nec"
)

const (
	repeats = 2
	pause   = 2 * time.Second
)

// sendHeld sends fm and then repeat codes, each starting one RepeatPeriod
// after the previous, as a remote does while the button is held.
func sendHeld(tx *irservo.TxDevice, fm irservo.FrameMarshaller) {
	time.Sleep(nec.RepeatPeriod - tx.SendFrame(fm))
	for i := 0; i < repeats; i++ {
		time.Sleep(nec.RepeatPeriod - tx.SendFrame(nec.Repeat{}))
	}
}

func main() {
	tx := irservo.NewTxDevice(irservo.TxConfig{Pin: machine.GP17})
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})

	codes := []uint32{
		dispatch.CodeChannelUp,
		dispatch.CodeChannelDown,
		dispatch.CodeVolumeUp,
		dispatch.CodeVolumeDown,
	}
	for {
		for _, code := range codes {
			valid, addr, cmd := nec.Split(code)
			println("send", code, "addr", addr, "cmd", cmd, "valid", valid)
			led.High()
			sendHeld(tx, nec.Frame{Code: code})
			led.Low()
			time.Sleep(pause)
		}
	}
}
