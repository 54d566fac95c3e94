//go:build tinygo

package irservo

import (
	. "machine"
	"time"

	"github.com/sparques/pwm"
)

// TxDevice drives an IR LED with a 38kHz carrier. It is the bench
// counterpart of RxDevice: anything implementing FrameMarshaller can be
// replayed at the controller.
type TxDevice struct {
	pin    Pin
	pgroup pwm.Group
	ch     uint8
	duty   uint32
}

// TxConfig configures a TxDevice.
type TxConfig struct {
	// Pin is the GPIO pin connected to the IR LED.
	Pin Pin
	// DutyCycle is the carrier duty cycle in percent. Zero means 33%.
	DutyCycle uint32
}

func NewTxDevice(cfg TxConfig) *TxDevice {
	if cfg.DutyCycle == 0 || cfg.DutyCycle > 100 {
		cfg.DutyCycle = 33
	}
	cfg.Pin.Configure(PinConfig{Mode: PinPWM})
	pgroup := pwm.Get(cfg.Pin)
	pgroup.Configure(PWMConfig{Period: uint64(1e9) / uint64(Freq38Khz)})
	ch, _ := pgroup.Channel(cfg.Pin)
	pgroup.Set(ch, 0)
	return &TxDevice{
		pin:    cfg.Pin,
		pgroup: pgroup,
		ch:     ch,
		duty:   pgroup.Top() * cfg.DutyCycle / 100,
	}
}

// SendPair emits the mark with the carrier on, then stays dark for the
// space. It returns the time spent.
func (tx *TxDevice) SendPair(pair TimePair) time.Duration {
	if pair[0] > 0 {
		tx.pgroup.Set(tx.ch, tx.duty)
		time.Sleep(pair[0])
		tx.pgroup.Set(tx.ch, 0)
	}
	time.Sleep(pair[1])
	return pair[0] + pair[1]
}

func (tx *TxDevice) SendFrame(fm FrameMarshaller) (d time.Duration) {
	for _, p := range fm.MarshalFrame() {
		d += tx.SendPair(p)
	}
	return d
}

// SendFrames sends each frame followed by gap of darkness.
func (tx *TxDevice) SendFrames(gap time.Duration, fms ...FrameMarshaller) {
	for _, fm := range fms {
		tx.SendFrame(fm)
		time.Sleep(gap)
	}
}
