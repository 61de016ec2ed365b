package stm32

// ConnState describes the lifecycle of a device connection.
type ConnState int

const (
	Disconnected ConnState = iota
	Connecting
	Connected
	Failed
)

func (s ConnState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Status is the externally visible connection state. Err holds the reason
// when State is Failed and is nil otherwise.
type Status struct {
	State ConnState
	Err   error
}
