package monitor

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/stm32mic/micmon/pkg/config"
	"github.com/stm32mic/micmon/pkg/stm32"
)

// DialFunc constructs a fresh device for one connection attempt.
type DialFunc func(cfg *config.Config) stm32.Device

// Header is the self-consistent state block shown above the plots.
type Header struct {
	Time      time.Time
	RateHz    float64
	RateKnown bool
	Status    stm32.Status
	Passes    uint64
	Dropped   uint64
}

// Session owns one Monitor and at most one live device, and is the single
// surface the UI shell calls: connect, disconnect, history snapshots and
// header state. Histories persist across reconnects; devices do not.
type Session struct {
	cfg    *config.Config
	logger *zap.Logger
	dial   DialFunc
	mon    *Monitor

	mu   sync.Mutex
	dev  stm32.Device
	done chan struct{}

	// Retained after disconnect so the counter survives device teardown.
	droppedBefore uint64
}

// Option configures a Session.
type Option func(*Session)

// WithDial overrides how the Session constructs devices. Used for the mock
// device and for tests.
func WithDial(dial DialFunc) Option {
	return func(s *Session) { s.dial = dial }
}

// NewSession creates a Session for the given configuration.
func NewSession(cfg *config.Config, logger *zap.Logger, opts ...Option) *Session {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Session{
		cfg:    cfg,
		logger: logger,
		mon:    New(cfg.History.Points, logger),
		dial: func(cfg *config.Config) stm32.Device {
			return stm32.New(cfg.Serial.Port, cfg.Serial.BaudRate, 0, logger)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Monitor exposes the underlying Monitor for snapshot reads and update
// callbacks.
func (s *Session) Monitor() *Monitor {
	return s.mon
}

// Connect dials a new device and starts feeding the Monitor. Reconnection
// after a failure is exactly this call again.
func (s *Session) Connect() (stm32.Status, error) {
	s.mu.Lock()
	if s.dev != nil && s.dev.IsConnected() {
		st := s.dev.Status()
		s.mu.Unlock()
		return st, fmt.Errorf("already connected")
	}
	done := s.done
	s.mu.Unlock()

	// The previous run may still be draining a dead device's buffer. Wait for
	// it, or its terminal shutdown write could land after the reset below and
	// mute callbacks for the new run. The wait happens outside the lock: the
	// draining goroutine may fire callbacks that read session state.
	if done != nil {
		<-done
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dev != nil && s.dev.IsConnected() {
		return s.dev.Status(), fmt.Errorf("already connected")
	}
	s.retireDeviceLocked()

	dev := s.dial(s.cfg)
	if err := dev.Connect(); err != nil {
		// Keep the failed device so Header reports Failed(reason).
		s.dev = dev
		return dev.Status(), err
	}

	s.dev = dev
	s.mon.ResetShutdown()

	done = make(chan struct{})
	go func() {
		defer close(done)
		s.mon.Run(dev.Samples())
	}()
	s.done = done

	s.logger.Info("acquisition started")
	return dev.Status(), nil
}

// Disconnect closes the device and waits for the acquisition goroutine to
// drain. Safe to call when not connected. The wait happens outside the lock:
// the draining goroutine may still fire update callbacks, and those must be
// able to read session state.
func (s *Session) Disconnect() error {
	s.mu.Lock()
	dev := s.dev
	done := s.done
	s.mu.Unlock()

	if dev == nil {
		return nil
	}

	err := dev.Close()
	if done != nil {
		<-done
	}

	s.mu.Lock()
	if s.dev == dev {
		s.retireDeviceLocked()
	}
	s.mu.Unlock()
	s.logger.Info("acquisition stopped")

	return err
}

// retireDeviceLocked folds the outgoing device's counters into the session
// and drops the reference. Caller holds s.mu.
func (s *Session) retireDeviceLocked() {
	if s.dev != nil {
		s.droppedBefore += s.dev.Dropped()
		s.dev = nil
	}
	s.done = nil
}

// Connected reports whether a device is currently delivering samples.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dev != nil && s.dev.IsConnected()
}

// History returns an ordered snapshot of the channel's samples.
func (s *Session) History(channel int) []stm32.Sample {
	return s.mon.History(channel)
}

// Header returns the current header block. All fields are read under one
// lock so a caller never observes a torn state.
func (s *Session) Header() Header {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := stm32.Status{State: stm32.Disconnected}
	dropped := s.droppedBefore
	if s.dev != nil {
		status = s.dev.Status()
		dropped += s.dev.Dropped()
	}

	rate, known := s.mon.Rate()

	return Header{
		Time:      time.Now(),
		RateHz:    rate,
		RateKnown: known,
		Status:    status,
		Passes:    s.mon.Passes(),
		Dropped:   dropped,
	}
}
