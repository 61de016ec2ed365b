package monitor

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stm32mic/micmon/pkg/stm32"
)

func frameAt(ts time.Time) []stm32.Sample {
	frame := make([]stm32.Sample, stm32.NumChannels)
	for ch := range frame {
		frame[ch] = stm32.Sample{
			Timestamp: ts,
			Channel:   ch,
			Min:       123,
			Max:       456,
			Amplitude: 123456,
			RMS:       789012,
		}
	}
	return frame
}

// runAll feeds the samples through Run synchronously.
func runAll(m *Monitor, samples []stm32.Sample) {
	input := make(chan stm32.Sample, len(samples))
	for _, s := range samples {
		input <- s
	}
	close(input)
	m.Run(input)
}

func TestMonitor_OneFullFrame(t *testing.T) {
	m := New(100, nil)
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	runAll(m, frameAt(ts))

	for ch := 0; ch < stm32.NumChannels; ch++ {
		hist := m.History(ch)
		require.Len(t, hist, 1, "channel %d", ch)
		assert.Equal(t, 123, hist[0].Min)
		assert.Equal(t, 456, hist[0].Max)
		assert.Equal(t, stm32.Microvolts(123456), hist[0].Amplitude)
		assert.Equal(t, stm32.Microvolts(789012), hist[0].RMS)
	}

	assert.Equal(t, uint64(1), m.Passes())
	_, known := m.Rate()
	assert.False(t, known)
}

func TestMonitor_CapacityEviction(t *testing.T) {
	m := New(3, nil)
	assert.Equal(t, 3, m.Capacity())

	var samples []stm32.Sample
	for i := 1; i <= 5; i++ {
		samples = append(samples, stm32.Sample{Channel: 2, Min: i})
	}
	runAll(m, samples)

	hist := m.History(2)
	require.Len(t, hist, 3)
	assert.Equal(t, 3, hist[0].Min)
	assert.Equal(t, 4, hist[1].Min)
	assert.Equal(t, 5, hist[2].Min)
}

func TestMonitor_InvalidChannelDiscarded(t *testing.T) {
	m := New(10, nil)

	runAll(m, []stm32.Sample{
		{Channel: 9, Min: 1},
		{Channel: -1, Min: 2},
	})

	for ch := 0; ch < stm32.NumChannels; ch++ {
		assert.Empty(t, m.History(ch))
	}
	assert.Equal(t, uint64(2), m.Discarded())
	assert.Equal(t, uint64(0), m.Passes())
}

func TestMonitor_HistoryOutOfRange(t *testing.T) {
	m := New(10, nil)
	assert.Nil(t, m.History(-1))
	assert.Nil(t, m.History(stm32.NumChannels))
}

func TestMonitor_RateFromTimestamps(t *testing.T) {
	m := New(100, nil)
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	var samples []stm32.Sample
	for i := 0; i < 4; i++ {
		samples = append(samples, frameAt(t0.Add(time.Duration(i)*time.Second))...)
	}
	runAll(m, samples)

	rate, known := m.Rate()
	require.True(t, known)
	assert.InDelta(t, 1.0, rate, 1e-9)
	assert.Equal(t, uint64(4), m.Passes())
}

func TestMonitor_OnUpdate(t *testing.T) {
	m := New(100, nil)

	var mu sync.Mutex
	var calls int
	var completions int
	m.OnUpdate(func(s stm32.Sample, passComplete bool) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if passComplete {
			completions++
		}
	})

	ts := time.Now()
	runAll(m, frameAt(ts))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, stm32.NumChannels, calls)
	assert.Equal(t, 1, completions, "only the sixth sample completes the pass")
}

// Run must return when the input channel closes, and callbacks must stop
// firing afterwards until ResetShutdown.
func TestMonitor_GracefulShutdown(t *testing.T) {
	m := New(100, nil)
	input := make(chan stm32.Sample, 10)

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Run(input)
	}()

	input <- stm32.Sample{Channel: 0, Min: 1}
	close(input)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after input channel closed")
	}

	require.Len(t, m.History(0), 1)

	// A new acquisition run reuses the same histories.
	m.ResetShutdown()
	runAll(m, []stm32.Sample{{Channel: 0, Min: 2}})
	assert.Len(t, m.History(0), 2)
}
