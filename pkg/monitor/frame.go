package monitor

import (
	"time"

	"github.com/stm32mic/micmon/pkg/stm32"
)

// rateWindow is how many inter-pass intervals feed the frequency estimate.
const rateWindow = 10

// fullFrame has one presence bit set per channel.
const fullFrame = 1<<stm32.NumChannels - 1

// frameTracker decides when a sampling pass is complete. A pass completes
// once every channel has reported at least one sample since the previous
// completion; duplicate arrivals just overwrite their presence bit. The
// inter-pass intervals slide through a fixed window from which the sampling
// frequency is estimated.
type frameTracker struct {
	seen         uint8 // presence bitmask, channels 0..5
	lastComplete time.Time

	intervals [rateWindow]time.Duration
	next      int
	filled    int

	completed uint64
}

// observe marks the channel present and reports whether this arrival
// completed a pass.
func (f *frameTracker) observe(channel int, now time.Time) bool {
	f.seen |= 1 << uint(channel)
	if f.seen != fullFrame {
		return false
	}

	if !f.lastComplete.IsZero() {
		f.intervals[f.next] = now.Sub(f.lastComplete)
		f.next = (f.next + 1) % rateWindow
		if f.filled < rateWindow {
			f.filled++
		}
	}
	f.lastComplete = now
	f.seen = 0
	f.completed++

	return true
}

// rate returns the sampling frequency estimate in Hz. It is unknown until a
// full pass beyond the first has completed.
func (f *frameTracker) rate() (float64, bool) {
	if f.filled == 0 {
		return 0, false
	}

	var total time.Duration
	for i := 0; i < f.filled; i++ {
		total += f.intervals[i]
	}
	mean := total.Seconds() / float64(f.filled)
	if mean <= 0 {
		return 0, false
	}

	return 1 / mean, true
}
