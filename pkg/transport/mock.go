package transport

import (
	"context"
	"sync"
	"time"

	"fieldbus-engine/pkg/errors"
)

// MockTransport is an in-memory transport for deterministic protocol
// tests: canned responses are queued ahead of time, every sent frame is
// recorded, and failures can be injected at any of the three I/O points.
// No sockets, no serial ports, no timing dependence.
type MockTransport struct {
	mu        sync.Mutex
	connected bool
	responses [][]byte
	sent      [][]byte

	connectErr error
	sendErr    error
	receiveErr error

	// Responder, when set, synthesizes a response from each sent frame.
	// Queued responses take precedence.
	Responder func(request []byte) []byte

	statsTracker
}

// NewMockTransport creates a disconnected mock transport
func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

// Connect marks the transport connected, unless a connect failure has
// been injected.
func (t *MockTransport) Connect(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.connectErr != nil {
		return errors.New("mock.connect", errors.KindConnectionFailed, t.connectErr)
	}
	t.connected = true
	t.recordConnect()
	return nil
}

// Disconnect marks the transport disconnected
func (t *MockTransport) Disconnect() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.connected = false
	return nil
}

// IsConnected reports the mock connection flag
func (t *MockTransport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

// Send records the frame in the send history
func (t *MockTransport) Send(ctx context.Context, data []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.connected {
		return 0, errors.Newf("mock.send", errors.KindConnectionLost, "not connected")
	}
	if t.sendErr != nil {
		return 0, errors.New("mock.send", errors.KindSendFailed, t.sendErr)
	}

	frame := make([]byte, len(data))
	copy(frame, data)
	t.sent = append(t.sent, frame)

	if t.Responder != nil && len(t.responses) == 0 {
		if resp := t.Responder(frame); resp != nil {
			t.responses = append(t.responses, resp)
		}
	}

	t.recordSend(len(data))
	return len(data), nil
}

// Receive pops the next queued response. An empty queue yields a
// timeout error immediately instead of sleeping, keeping tests fast
// and deterministic.
func (t *MockTransport) Receive(ctx context.Context, buf []byte, timeout time.Duration) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.connected {
		return 0, errors.Newf("mock.receive", errors.KindConnectionLost, "not connected")
	}
	if t.receiveErr != nil {
		return 0, errors.New("mock.receive", errors.KindConnectionLost, t.receiveErr)
	}
	if len(t.responses) == 0 {
		return 0, errors.Newf("mock.receive", errors.KindTimeout, "no data within %v", timeout)
	}

	next := t.responses[0]
	n := copy(buf, next)
	if n < len(next) {
		// Caller's buffer was too small; hand over the rest next call
		t.responses[0] = next[n:]
	} else {
		t.responses = t.responses[1:]
	}

	t.recordReceive(n)
	return n, nil
}

// Stats returns a snapshot of the transport counters
func (t *MockTransport) Stats() Stats {
	return t.snapshot()
}

// QueueResponse appends a canned response to the receive queue
func (t *MockTransport) QueueResponse(data []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	resp := make([]byte, len(data))
	copy(resp, data)
	t.responses = append(t.responses, resp)
}

// SentFrames returns a copy of the send history
func (t *MockTransport) SentFrames() [][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	frames := make([][]byte, len(t.sent))
	copy(frames, t.sent)
	return frames
}

// ClearHistory drops the recorded send history and pending responses
func (t *MockTransport) ClearHistory() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = nil
	t.responses = nil
}

// FailConnect injects an error for subsequent Connect calls; nil clears it
func (t *MockTransport) FailConnect(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.connectErr = err
}

// FailSend injects an error for subsequent Send calls; nil clears it
func (t *MockTransport) FailSend(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sendErr = err
}

// FailReceive injects an error for subsequent Receive calls; nil clears it
func (t *MockTransport) FailReceive(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.receiveErr = err
}
