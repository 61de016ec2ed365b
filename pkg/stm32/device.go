package stm32

import (
	"bufio"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"
)

const (
	// DefaultBaudRate matches the firmware UART configuration.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default size for the samples channel buffer.
	DefaultBufferSize = 100
)

// Serial reads mic statistics from the board over a serial port. The read
// loop runs on its own goroutine and never waits on consumers: when the
// samples channel is full the sample is dropped and counted.
type Serial struct {
	port     string
	baudRate int
	bufSize  int
	logger   *zap.Logger

	mu      sync.RWMutex
	conn    serial.Port
	status  Status
	started bool
	closing bool

	samples chan Sample
	dropped atomic.Uint64
}

// New creates a new Serial device for the given port. Zero baudRate or
// bufSize select the defaults.
func New(port string, baudRate int, bufSize int, logger *zap.Logger) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Serial{
		port:     port,
		baudRate: baudRate,
		bufSize:  bufSize,
		logger:   logger,
		samples:  make(chan Sample, bufSize),
		status:   Status{State: Disconnected},
	}
}

// Connect opens the serial port and starts the read loop. A Serial can be
// connected at most once; reconnection means constructing a new Serial.
// The Connecting state is transitional and held under the device lock for
// the duration of the open, so Status observers only ever see Disconnected,
// Connected or Failed.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		return fmt.Errorf("device already connected")
	}

	d.status = Status{State: Connecting}

	mode := &serial.Mode{
		BaudRate: d.baudRate,
	}
	port, err := serial.Open(d.port, mode)
	if err != nil {
		err = fmt.Errorf("failed to open serial port %s: %w", d.port, err)
		// The device is spent: mark it so a repeated Connect or a Close
		// cannot reopen or double-close anything.
		d.started = true
		d.closing = true
		d.status = Status{State: Failed, Err: err}
		close(d.samples)
		return err
	}

	d.conn = port
	d.started = true
	d.status = Status{State: Connected}
	d.logger.Info("serial port opened",
		zap.String("port", d.port),
		zap.Int("baudRate", d.baudRate),
	)

	go d.readLoop()

	return nil
}

// Close stops the read loop and closes the port. Safe to call from any
// goroutine at any time; the read loop exits promptly once the handle closes.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.started || d.closing {
		return nil
	}

	d.closing = true
	d.status = Status{State: Disconnected}

	if err := d.conn.Close(); err != nil {
		d.logger.Warn("error closing serial port", zap.Error(err), zap.String("port", d.port))
		return err
	}
	d.logger.Info("serial port closed", zap.String("port", d.port))

	return nil
}

// Samples returns the channel of parsed samples. The channel is closed when
// the read loop exits, after Close or a transport failure.
func (d *Serial) Samples() <-chan Sample {
	return d.samples
}

// Status returns the current connection status.
func (d *Serial) Status() Status {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.status
}

// IsConnected reports whether the read loop is active.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.status.State == Connected
}

// Dropped returns the count of lines and samples discarded so far, either
// because they failed to parse or because the samples channel was full.
func (d *Serial) Dropped() uint64 {
	return d.dropped.Load()
}

// readLoop reads lines from the serial port, parses them and forwards the
// samples. It owns the samples channel and closes it on exit.
func (d *Serial) readLoop() {
	defer close(d.samples)

	scanner := bufio.NewScanner(d.conn)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		sample, err := parseLine(line)
		if err != nil {
			d.dropped.Add(1)
			d.logger.Debug("discarding line", zap.String("line", line), zap.Error(err))
			continue
		}
		sample.Timestamp = time.Now()

		select {
		case d.samples <- sample:
		default:
			d.dropped.Add(1)
			d.logger.Warn("samples channel full, dropping sample", zap.Int("channel", sample.Channel))
		}
	}

	// Scanner stopped: explicit close, device unplugged or permission lost.
	err := scanner.Err()

	d.mu.Lock()
	if d.closing {
		// Explicit Close already set Disconnected; the read error from the
		// closed handle is expected and not a failure.
		d.mu.Unlock()
		return
	}
	if err == nil {
		err = io.EOF
	}
	d.status = Status{State: Failed, Err: err}
	d.mu.Unlock()

	d.logger.Error("serial read failed", zap.Error(err), zap.String("port", d.port))
}
