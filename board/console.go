//go:build tinygo

package board

import (
	"fmt"
	"machine"
	"time"

	"github.com/sparques/irservo"
)

type console struct{}

func (console) Printf(format string, args ...any) {
	println(fmt.Sprintf(format, args...))
}

// Console logs to the serial console.
var Console irservo.Logger = console{}

// Trap reports err and halts, blinking led in groups of three forever.
// Boot failures end here.
func Trap(led machine.Pin, err error) {
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for {
		println("irservo: fatal:", err.Error())
		for i := 0; i < 3; i++ {
			led.High()
			time.Sleep(100 * time.Millisecond)
			led.Low()
			time.Sleep(100 * time.Millisecond)
		}
		time.Sleep(time.Second)
	}
}
