//go:build rp2040

// Command irservo is the controller firmware for a Raspberry Pi Pico.
//
// Wiring: receiver output to GP15 and GP14, servo signal to GP16, the
// on-board LED is the indicator.
package main

import (
	"context"
	"machine"
	"time"

	"github.com/sparques/irservo/board"
	"github.com/sparques/irservo/controller"
)

func main() {
	// give the USB console a moment to attach
	time.Sleep(2 * time.Second)
	println("irservo: booting")

	b, err := board.New(board.Config{
		RisePin:  machine.GP15,
		FallPin:  machine.GP14,
		ServoPin: machine.GP16,
		ServoPWM: machine.PWM0,
		LEDPin:   machine.LED,
	}, controller.Config{})
	if err != nil {
		board.Trap(machine.LED, err)
	}
	if err := b.Start(); err != nil {
		board.Trap(machine.LED, err)
	}

	println("irservo: ready")
	if err := b.Run(context.Background()); err != nil {
		board.Trap(machine.LED, err)
	}
}
