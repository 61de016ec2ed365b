package stm32

// Device defines the interface for mic monitor devices (real or mocked).
// A Device carries one connection: after Close or a transport failure a new
// Device must be created to reconnect.
type Device interface {
	Connect() error
	Close() error
	Samples() <-chan Sample
	Status() Status
	IsConnected() bool
	Dropped() uint64
}

// Ensure Serial implements Device.
var _ Device = (*Serial)(nil)

// Ensure Mock implements Device.
var _ Device = (*Mock)(nil)
