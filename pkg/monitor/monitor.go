package monitor

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/stm32mic/micmon/pkg/stm32"
)

// DefaultCapacity is the number of samples retained per channel when no
// explicit capacity is configured.
const DefaultCapacity = 100

// Monitor maintains the per-channel rolling histories and the sampling pass
// bookkeeping. The acquisition goroutine is the only writer; consumers read
// through copy-on-read snapshots, so neither side ever holds the lock for
// longer than a single append or copy.
type Monitor struct {
	logger *zap.Logger

	mu        sync.RWMutex
	histories [stm32.NumChannels]*ring
	frame     frameTracker
	discarded uint64
	shutdown  bool

	cbMu      sync.RWMutex
	callbacks []func(s stm32.Sample, passComplete bool)
}

// New creates a Monitor retaining capacity samples per channel. Capacity is
// fixed for the Monitor's lifetime; zero or negative selects DefaultCapacity.
func New(capacity int, logger *zap.Logger) *Monitor {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Monitor{logger: logger}
	for ch := range m.histories {
		m.histories[ch] = newRing(capacity)
	}
	return m
}

// Run drains the input channel, recording every sample, until the channel
// closes. It never blocks on consumers. Intended to run on its own goroutine.
func (m *Monitor) Run(input <-chan stm32.Sample) {
	for s := range input {
		m.ingest(s)
	}

	// Channel closed - stop notifying consumers.
	m.mu.Lock()
	m.shutdown = true
	m.mu.Unlock()
}

// ingest appends one sample to its channel history and advances the pass
// tracker, all inside one short critical section.
func (m *Monitor) ingest(s stm32.Sample) {
	if s.Timestamp.IsZero() {
		s.Timestamp = time.Now()
	}

	m.mu.Lock()
	if s.Channel < 0 || s.Channel >= stm32.NumChannels {
		m.discarded++
		m.mu.Unlock()
		m.logger.Debug("discarding sample with invalid channel", zap.Int("channel", s.Channel))
		return
	}

	m.histories[s.Channel].append(s)
	passComplete := m.frame.observe(s.Channel, s.Timestamp)
	shouldNotify := !m.shutdown
	m.mu.Unlock()

	if shouldNotify {
		m.notifyCallbacks(s, passComplete)
	}
}

// History returns a copy of the channel's history in arrival order, oldest
// first. Out-of-range channels yield nil.
func (m *Monitor) History(channel int) []stm32.Sample {
	if channel < 0 || channel >= stm32.NumChannels {
		return nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.histories[channel].snapshot()
}

// Rate returns the sampling frequency estimate in Hz, and whether enough
// passes have completed for the estimate to be meaningful.
func (m *Monitor) Rate() (float64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.frame.rate()
}

// Passes returns the number of completed sampling passes.
func (m *Monitor) Passes() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.frame.completed
}

// Discarded returns the count of samples rejected for an invalid channel.
func (m *Monitor) Discarded() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.discarded
}

// Capacity returns the per-channel history capacity.
func (m *Monitor) Capacity() int {
	return m.histories[0].cap()
}

// OnUpdate registers a callback invoked after each recorded sample. The
// callback runs on the acquisition goroutine and must return quickly.
func (m *Monitor) OnUpdate(callback func(s stm32.Sample, passComplete bool)) {
	m.cbMu.Lock()
	defer m.cbMu.Unlock()
	m.callbacks = append(m.callbacks, callback)
}

// ResetShutdown re-enables callbacks before a new acquisition run starts.
func (m *Monitor) ResetShutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shutdown = false
}

func (m *Monitor) notifyCallbacks(s stm32.Sample, passComplete bool) {
	m.cbMu.RLock()
	callbacks := make([]func(s stm32.Sample, passComplete bool), len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(s, passComplete)
		}
	}
}
