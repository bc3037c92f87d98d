package reconnect

// ConnectionState tracks the link lifecycle as an explicit state
// machine so channel health can be queried from outside without
// reaching into goroutine-local state.
type ConnectionState int

const (
	// StateDisconnected - link is down, retry attempts remain
	StateDisconnected ConnectionState = iota
	// StateReconnecting - a connect attempt is in progress
	StateReconnecting
	// StateConnected - link is up
	StateConnected
	// StateFailed - the attempt budget is exhausted; no further I/O
	// until externally reset
	StateFailed
)

// String returns the string representation of the connection state
func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateReconnecting:
		return "RECONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}
