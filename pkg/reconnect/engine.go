package reconnect

import (
	"context"
	"sync"
	"time"

	"fieldbus-engine/pkg/errors"
	"fieldbus-engine/pkg/logger"
)

// ConnectFunc is the fallible connect operation the engine drives.
// The engine is protocol-agnostic: any transport's Connect fits.
type ConnectFunc func(ctx context.Context) error

// Stats holds monotonically increasing reconnect counters
type Stats struct {
	TotalAttempts uint64
	Successes     uint64
	Failures      uint64
	LastSuccessAt time.Time
}

// Engine drives exponential-backoff reconnection for one channel.
// It owns the channel's ConnectionState; external observers read
// snapshots through State() and Stats() and never mutate it directly.
type Engine struct {
	policy Policy

	mu            sync.Mutex
	state         ConnectionState
	attempt       int
	lastAttemptAt time.Time
	stats         Stats
}

// NewEngine creates a reconnect engine with the given policy.
// Zero-valued policy fields are normalized to usable defaults.
func NewEngine(policy Policy) *Engine {
	return &Engine{
		policy: policy.normalized(),
		state:  StateDisconnected,
	}
}

// Execute runs one reconnect attempt through connectFn.
//
// When the attempt budget is already exhausted the engine transitions
// to Failed and returns a MaxReconnectAttemptsExceeded error without
// invoking connectFn. Otherwise it backs off (skipping the delay before
// the first attempt), invokes connectFn, and on success resets the
// attempt counter; on failure it stays Disconnected while attempts
// remain or becomes Failed when they run out.
func (e *Engine) Execute(ctx context.Context, connectFn ConnectFunc) error {
	delay, err := e.beginAttempt()
	if err != nil {
		return err
	}

	if delay > 0 {
		logger.LogDebug("reconnect backing off %v before attempt %d", delay, e.Attempt())
		select {
		case <-ctx.Done():
			e.recordFailure()
			return errors.New("reconnect", errors.KindConnectionFailed, ctx.Err())
		case <-time.After(delay):
		}
	}

	if err := connectFn(ctx); err != nil {
		exhausted := e.recordFailure()
		if exhausted {
			logger.LogError("reconnect attempt %d failed, budget exhausted: %v", e.Attempt(), err)
			return errors.New("reconnect", errors.KindMaxReconnectAttempts, err)
		}
		logger.LogWarn("reconnect attempt %d failed: %v", e.Attempt(), err)
		return errors.New("reconnect", errors.KindConnectionFailed, err)
	}

	e.recordSuccess()
	logger.LogInfo("reconnect succeeded")
	return nil
}

// beginAttempt checks the attempt budget, advances the counter and
// returns the backoff delay to apply before connecting.
func (e *Engine) beginAttempt() (time.Duration, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateFailed || (e.policy.MaxAttempts > 0 && e.attempt >= e.policy.MaxAttempts) {
		e.state = StateFailed
		return 0, errors.Newf("reconnect", errors.KindMaxReconnectAttempts,
			"gave up after %d attempts", e.attempt)
	}

	e.attempt++
	e.lastAttemptAt = time.Now()
	e.state = StateReconnecting
	e.stats.TotalAttempts++

	// No backoff before the very first attempt
	if e.attempt == 1 {
		return 0, nil
	}
	return e.policy.DelayFor(e.attempt), nil
}

// recordFailure returns true when the attempt budget is now exhausted
func (e *Engine) recordFailure() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stats.Failures++
	if e.policy.MaxAttempts > 0 && e.attempt >= e.policy.MaxAttempts {
		e.state = StateFailed
		return true
	}
	e.state = StateDisconnected
	return false
}

func (e *Engine) recordSuccess() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.attempt = 0
	e.state = StateConnected
	e.stats.Successes++
	e.stats.LastSuccessAt = time.Now()
}

// MarkDisconnected transitions a connected engine back to Disconnected
// when the channel observes a lost link outside a reconnect cycle.
func (e *Engine) MarkDisconnected() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateConnected {
		e.state = StateDisconnected
	}
}

// State returns the current connection state
func (e *Engine) State() ConnectionState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Attempt returns the current consecutive-failure attempt counter
func (e *Engine) Attempt() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.attempt
}

// Stats returns a snapshot of the reconnect counters
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// Reset clears the Failed state and attempt counter so the channel can
// resume reconnecting after an external intervention.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.attempt = 0
	e.state = StateDisconnected
}
