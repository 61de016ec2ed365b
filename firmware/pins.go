package main

import "machine"

const (
	// Sampling configuration
	SAMPLE_INTERVAL_US = 250 // ADC sweep interval in microseconds
	WINDOW_MS          = 100 // Measurement window per reported frame

	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 12   // ADC resolution in bits (12-bit = 0-4095)
	ADC_FULL_SCALE   = 4096

	// Number of microphone inputs
	NUM_MICS = 6

	// Serial configuration
	// One frame is six lines of at most ~60 bytes each at 10 frames/sec:
	// 6 * 60 * 10 = 3,600 bytes/sec. UART 8N1: 10 bits/byte = 36,000 baud
	// minimum; 115200 provides ~3.2x headroom.
	UART_BAUD_RATE = 115200
)

// Microphone ADC pins; the array index matches the A<n> label in the output.
var MIC_PINS = [NUM_MICS]machine.Pin{
	machine.A0,
	machine.A1,
	machine.A2,
	machine.A3,
	machine.A4,
	machine.A5,
}
