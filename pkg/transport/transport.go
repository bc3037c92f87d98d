package transport

import (
	"context"
	"sync"
	"time"
)

// Transport is the byte-stream contract every link implementation
// satisfies. Send and Receive fail with a ConnectionLost error when the
// link is down and Receive fails with a Timeout error when no data
// arrives within the supplied timeout; neither may block past it.
type Transport interface {
	Connect(ctx context.Context) error
	Disconnect() error
	Send(ctx context.Context, data []byte) (int, error)
	Receive(ctx context.Context, buf []byte, timeout time.Duration) (int, error)
	IsConnected() bool
	Stats() Stats
}

// Stats is a snapshot of transport-level counters
type Stats struct {
	BytesSent     uint64
	BytesReceived uint64
	FramesSent    uint64
	Connects      uint64
	LastError     string
	LastErrorAt   time.Time
}

// statsTracker accumulates transport counters behind a short-held lock.
// Embedded by the concrete transports; callers only ever see copies.
type statsTracker struct {
	mu    sync.Mutex
	stats Stats
}

func (t *statsTracker) recordSend(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.BytesSent += uint64(n)
	t.stats.FramesSent++
}

func (t *statsTracker) recordReceive(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.BytesReceived += uint64(n)
}

func (t *statsTracker) recordConnect() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.Connects++
}

func (t *statsTracker) recordError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.LastError = err.Error()
	t.stats.LastErrorAt = time.Now()
}

func (t *statsTracker) snapshot() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}
