package reconnect

import (
	"math"
	"math/rand"
	"time"
)

// Policy configures the backoff behavior of the reconnect engine
type Policy struct {
	// MaxAttempts bounds consecutive failed attempts before the engine
	// gives up. Zero means retry forever.
	MaxAttempts int
	// InitialDelay is the base backoff delay
	InitialDelay time.Duration
	// MaxDelay caps the exponential growth
	MaxDelay time.Duration
	// Multiplier is the exponential growth factor per attempt
	Multiplier float64
	// Jitter perturbs each delay by up to ±25% to avoid synchronized
	// retry storms across channels
	Jitter bool
}

// DefaultPolicy returns a policy suitable for most field links:
// 1s initial delay doubling up to 30s, retrying forever, with jitter.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  0,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2,
		Jitter:       true,
	}
}

// normalized fills in zero fields with usable defaults
func (p Policy) normalized() Policy {
	if p.InitialDelay <= 0 {
		p.InitialDelay = time.Second
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 30 * time.Second
	}
	if p.Multiplier < 1 {
		p.Multiplier = 2
	}
	return p
}

// DelayFor computes the backoff delay before the given attempt
// (1-based): min(initial * multiplier^(attempt-1), max), optionally
// jittered by ±25% uniformly at random with a floor of zero.
func (p Policy) DelayFor(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	delay := float64(p.InitialDelay) * math.Pow(p.Multiplier, float64(attempt-1))
	if delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}

	if p.Jitter {
		delay *= 0.75 + rand.Float64()*0.5
		if delay < 0 {
			delay = 0
		}
	}

	return time.Duration(delay)
}
