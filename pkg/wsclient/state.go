package wsclient

// ConnectionState is the single authoritative connection status. The
// "connected" predicate is derived from it being StateOpen and from nothing
// else; there is no separately maintained boolean that could drift from the
// transport's actual status.
type ConnectionState int

const (
	StateIdle ConnectionState = iota
	StateConnecting
	StateOpen
	StateClosing
	StateClosed
)

func (s ConnectionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
