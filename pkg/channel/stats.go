package channel

import (
	"sync"
	"time"
)

// Stats is a snapshot of one channel's health counters, exposed for
// external monitoring layers. Observers only ever receive copies.
type Stats struct {
	Requests     uint64
	Failures     uint64
	Reconnects   uint64
	WritesDone   uint64
	AvgLatencyMS float64
	LastSuccess  time.Time
}

// statsTracker accumulates channel counters behind a short-held lock
type statsTracker struct {
	mu           sync.Mutex
	requests     uint64
	failures     uint64
	reconnects   uint64
	writes       uint64
	totalLatency time.Duration
	lastSuccess  time.Time
}

func (t *statsTracker) recordRequest(latency time.Duration, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.requests++
	t.totalLatency += latency
	if err != nil {
		t.failures++
	} else {
		t.lastSuccess = time.Now()
	}
}

func (t *statsTracker) recordReconnect() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reconnects++
}

func (t *statsTracker) recordWrite() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.writes++
}

func (t *statsTracker) snapshot() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Stats{
		Requests:    t.requests,
		Failures:    t.failures,
		Reconnects:  t.reconnects,
		WritesDone:  t.writes,
		LastSuccess: t.lastSuccess,
	}
	if t.requests > 0 {
		s.AvgLatencyMS = float64(t.totalLatency.Milliseconds()) / float64(t.requests)
	}
	return s
}
