package stm32

import (
	"fmt"
	"time"
)

// NumChannels is the number of microphone inputs on the board (A0..A5).
const NumChannels = 6

// Microvolts is an exact fixed-point millivolt quantity stored as a whole
// number of microvolts. The firmware prints millivolts with a three digit
// fraction, so whole*1000+frac round-trips without floating point error.
type Microvolts int64

// Millivolts returns the value as floating point millivolts for display.
func (v Microvolts) Millivolts() float64 {
	return float64(v) / 1000.0
}

func (v Microvolts) String() string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%03dmV", sign, int64(v)/1000, int64(v)%1000)
}

// Sample is one parsed observation for a single microphone channel.
// Min and Max are raw ADC codes; Amplitude is the peak-to-peak value over
// the firmware's measurement window.
type Sample struct {
	Timestamp time.Time
	Channel   int
	Min       int
	Max       int
	Amplitude Microvolts
	RMS       Microvolts
}
