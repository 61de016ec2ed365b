package stm32

import (
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/stm32mic/micmon/pkg/config"
)

// Mock simulates the six microphone board for testing and development.
// Every tick it emits one full frame: one Sample per channel, with a slow
// sine modulation plus noise so the plots have visible structure.
type Mock struct {
	cfg    *config.MockConfig
	logger *zap.Logger

	samples chan Sample
	done    chan struct{}

	mu        sync.RWMutex
	status    Status
	started   bool
	startTime time.Time
}

// NewMock creates a new mocked device instance.
func NewMock(cfg *config.MockConfig, logger *zap.Logger) *Mock {
	if cfg == nil {
		cfg = &config.Default().Mock
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Mock{
		cfg:     cfg,
		logger:  logger,
		samples: make(chan Sample, DefaultBufferSize),
		done:    make(chan struct{}),
		status:  Status{State: Disconnected},
	}
}

// Connect starts the sample generator.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return fmt.Errorf("device already connected")
	}

	m.started = true
	m.startTime = time.Now()
	m.status = Status{State: Connected}
	m.logger.Info("mock device connected", zap.Duration("sampleRate", m.cfg.SampleRate))

	go m.generateFrames()

	return nil
}

// Close stops the generator.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started || m.status.State == Disconnected {
		return nil
	}

	m.status = Status{State: Disconnected}
	close(m.done)

	return nil
}

// Samples returns the channel for reading samples.
func (m *Mock) Samples() <-chan Sample {
	return m.samples
}

// Status returns the current connection status.
func (m *Mock) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// IsConnected returns whether the device is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.State == Connected
}

// Dropped always reports zero: the generator never produces unparseable data.
func (m *Mock) Dropped() uint64 {
	return 0
}

// generateFrames emits one frame of six samples per tick.
func (m *Mock) generateFrames() {
	defer close(m.samples)

	ticker := time.NewTicker(m.cfg.SampleRate)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case now := <-ticker.C:
			for ch := 0; ch < NumChannels; ch++ {
				sample := m.generateSample(ch, now)
				select {
				case m.samples <- sample:
				case <-m.done:
					return
				default:
					// Channel full, skip
				}
			}
		}
	}
}

// generateSample synthesizes one channel's statistics at the given instant.
func (m *Mock) generateSample(ch int, now time.Time) Sample {
	elapsed := now.Sub(m.startTime).Seconds()
	period := m.cfg.Period.Seconds()

	// Each channel gets its own phase so the six plots are distinguishable.
	phase := 2 * math.Pi * (elapsed/period + float64(ch)/NumChannels)
	envelope := 0.5 * (1 + math.Sin(phase))

	noise := m.cfg.NoiseLevel * math.Sin(elapsed*137.0+float64(ch))

	amplitudeMV := m.cfg.Amplitude*envelope + noise
	if amplitudeMV < 0 {
		amplitudeMV = 0
	}
	rmsMV := amplitudeMV / (2 * math.Sqrt2) // sine RMS from peak-to-peak

	// ADC codes around mid-scale of a 12-bit converter, 3.3V reference.
	swing := int(amplitudeMV / 3300.0 * 4095.0 / 2.0)
	minCode := 2048 - swing
	maxCode := 2048 + swing

	return Sample{
		Timestamp: now,
		Channel:   ch,
		Min:       minCode,
		Max:       maxCode,
		Amplitude: Microvolts(amplitudeMV * 1000),
		RMS:       Microvolts(rmsMV * 1000),
	}
}
