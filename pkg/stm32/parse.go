package stm32

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// linePattern matches one status line from the firmware.
// Format: "A0: MIN=  123 MAX=  456 AMP=123.456mV RMS=789.012mV"
var linePattern = regexp.MustCompile(
	`^A(\d):\s+MIN=\s*(-?\d+)\s+MAX=\s*(-?\d+)\s+AMP=(\d+)\.(\d+)mV\s+RMS=(\d+)\.(\d+)mV$`,
)

// parseLine parses one UART line into a Sample. Any malformed line yields an
// error and no partial result; callers discard and move on. The returned
// Sample carries no timestamp, the reader stamps it on receipt.
func parseLine(line string) (Sample, error) {
	line = strings.TrimFunc(line, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	})

	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return Sample{}, fmt.Errorf("line does not match template")
	}

	channel, err := strconv.Atoi(m[1])
	if err != nil {
		return Sample{}, fmt.Errorf("invalid channel: %w", err)
	}
	if channel >= NumChannels {
		return Sample{}, fmt.Errorf("channel %d out of range 0..%d", channel, NumChannels-1)
	}

	minVal, err := strconv.Atoi(m[2])
	if err != nil {
		return Sample{}, fmt.Errorf("invalid MIN: %w", err)
	}

	maxVal, err := strconv.Atoi(m[3])
	if err != nil {
		return Sample{}, fmt.Errorf("invalid MAX: %w", err)
	}

	amplitude, err := parseMicrovolts(m[4], m[5])
	if err != nil {
		return Sample{}, fmt.Errorf("invalid AMP: %w", err)
	}

	rms, err := parseMicrovolts(m[6], m[7])
	if err != nil {
		return Sample{}, fmt.Errorf("invalid RMS: %w", err)
	}

	return Sample{
		Channel:   channel,
		Min:       minVal,
		Max:       maxVal,
		Amplitude: amplitude,
		RMS:       rms,
	}, nil
}

// parseMicrovolts composes a "<whole>.<frac>" millivolt reading into exact
// microvolts. The firmware emits exactly three fractional digits; other
// counts are tolerated by scaling, with digits past the third truncated.
func parseMicrovolts(whole, frac string) (Microvolts, error) {
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, err
	}

	// Long fractions would overflow ParseInt; only the leading digits can
	// affect the microvolt value anyway.
	if len(frac) > 3 {
		frac = frac[:3]
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, err
	}
	for i := len(frac); i < 3; i++ {
		f *= 10
	}

	if w > (math.MaxInt64-f)/1000 {
		return 0, fmt.Errorf("millivolt value %s.%s overflows", whole, frac)
	}
	return Microvolts(w*1000 + f), nil
}
