//go:generate tinygo flash -target=nucleo-l432kc

package main

import (
	"machine"
	"time"
)

var (
	mics [NUM_MICS]machine.ADC
	uart = machine.UART0

	// Per-mic window statistics
	minCode [NUM_MICS]int32
	maxCode [NUM_MICS]int32
	sumSq   [NUM_MICS]uint64
	count   [NUM_MICS]uint32

	lastSweep   time.Time
	windowStart time.Time
)

func main() {
	for i := range mics {
		MIC_PINS[i].Configure(machine.PinConfig{Mode: machine.PinInput})
		mics[i] = machine.ADC{Pin: MIC_PINS[i]}
		mics[i].Configure(machine.ADCConfig{
			Reference:  ADC_REFERENCE_MV,
			Resolution: ADC_RESOLUTION,
		})
	}

	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	resetWindow()
	lastSweep = time.Now()
	windowStart = lastSweep

	for {
		now := time.Now()

		if now.Sub(lastSweep) >= time.Duration(SAMPLE_INTERVAL_US)*time.Microsecond {
			sweep()
			lastSweep = now
		}

		if now.Sub(windowStart) >= time.Duration(WINDOW_MS)*time.Millisecond {
			outputFrame()
			resetWindow()
			windowStart = now
		}

		time.Sleep(50 * time.Microsecond)
	}
}

func resetWindow() {
	for i := range mics {
		minCode[i] = ADC_FULL_SCALE
		maxCode[i] = -1
		sumSq[i] = 0
		count[i] = 0
	}
}

// sweep reads every mic once and folds the reading into the window stats.
func sweep() {
	for i := range mics {
		code := int32(mics[i].Get())
		if code < minCode[i] {
			minCode[i] = code
		}
		if code > maxCode[i] {
			maxCode[i] = code
		}
		// Center on mid-scale before squaring so RMS measures the AC part
		centered := int64(code - ADC_FULL_SCALE/2)
		sumSq[i] += uint64(centered * centered)
		count[i]++
	}
}

// outputFrame prints one status line per mic:
// "A0: MIN=  123 MAX=  456 AMP=123.456mV RMS=789.012mV"
func outputFrame() {
	for i := range mics {
		if count[i] == 0 {
			continue
		}

		ampMicrovolts := codesToMicrovolts(maxCode[i] - minCode[i])
		rmsCode := isqrt(sumSq[i] / uint64(count[i]))
		rmsMicrovolts := codesToMicrovolts(int32(rmsCode))

		print("A")
		print(i)
		print(": MIN=")
		printPadded(minCode[i], 5)
		print(" MAX=")
		printPadded(maxCode[i], 5)
		print(" AMP=")
		printMillivolts(ampMicrovolts)
		print(" RMS=")
		printMillivolts(rmsMicrovolts)
		print("\n")
	}
}

// codesToMicrovolts scales an ADC code span to microvolts against the
// reference voltage.
func codesToMicrovolts(codes int32) int64 {
	return int64(codes) * ADC_REFERENCE_MV * 1000 / ADC_FULL_SCALE
}

// printPadded prints v right-aligned in a field of the given width.
func printPadded(v int32, width int) {
	digits := 1
	abs := v
	if abs < 0 {
		abs = -abs
		digits++ // sign
	}
	for x := abs; x >= 10; x /= 10 {
		digits++
	}
	for ; digits < width; digits++ {
		print(" ")
	}
	print(v)
}

// printMillivolts prints a microvolt value as "<mV>.<3 digits>mV".
func printMillivolts(uv int64) {
	print(uv / 1000)
	print(".")
	frac := uv % 1000
	if frac < 100 {
		print("0")
	}
	if frac < 10 {
		print("0")
	}
	print(frac)
	print("mV")
}

// isqrt is an integer square root (Newton's method).
func isqrt(v uint64) uint64 {
	if v == 0 {
		return 0
	}
	x := v
	y := (x + 1) / 2
	for y < x {
		x = y
		y = (x + v/x) / 2
	}
	return x
}
