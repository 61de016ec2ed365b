package monitor

import "github.com/stm32mic/micmon/pkg/stm32"

// ring is a fixed-capacity FIFO of samples. Appends are O(1) and evict the
// oldest entry once full; the backing array never grows, so the steady state
// is allocation free. Not safe for concurrent use, the Monitor serializes
// access under its lock.
type ring struct {
	buf  []stm32.Sample
	head int // index of the oldest entry
	n    int
}

func newRing(capacity int) *ring {
	if capacity <= 0 {
		capacity = 1
	}
	return &ring{buf: make([]stm32.Sample, capacity)}
}

func (r *ring) append(s stm32.Sample) {
	if r.n == len(r.buf) {
		r.buf[r.head] = s
		r.head = (r.head + 1) % len(r.buf)
		return
	}
	r.buf[(r.head+r.n)%len(r.buf)] = s
	r.n++
}

// snapshot returns a copy of the contents in arrival order, oldest first.
func (r *ring) snapshot() []stm32.Sample {
	out := make([]stm32.Sample, r.n)
	for i := 0; i < r.n; i++ {
		out[i] = r.buf[(r.head+i)%len(r.buf)]
	}
	return out
}

func (r *ring) len() int { return r.n }

func (r *ring) cap() int { return len(r.buf) }
