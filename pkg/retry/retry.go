package retry

import (
	"context"
	"math/rand"
	"strings"
	"time"
)

// Policy controls exponential backoff between attempts. The delay starts
// at BaseDelay and doubles after each failure up to MaxDelay; Jitter
// spreads concurrent callers apart by up to that fraction of the delay.
type Policy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
	Jitter    float64
}

// ConnectPolicy is tuned for establishing a database connection: four
// attempts starting at 100ms, capped at 5s.
func ConnectPolicy() Policy {
	return Policy{
		Attempts:  4,
		BaseDelay: 100 * time.Millisecond,
		MaxDelay:  5 * time.Second,
		Jitter:    0.1,
	}
}

// transientPatterns match error text for conditions that tend to clear on
// their own. Anything outside this list fails fast so a bad password does
// not burn through the whole policy.
var transientPatterns = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"no such host",
	"timeout",
	"timed out",
	"temporary failure",
	"too many connections",
	"network is unreachable",
}

// Transient reports whether err looks like a temporary network or
// database condition worth another attempt.
func Transient(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range transientPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// DoWithResult runs fn until it succeeds, the policy is exhausted, or the
// error is permanent. Waits between attempts respect ctx cancellation.
func DoWithResult[T any](ctx context.Context, p Policy, fn func() (T, error)) (T, error) {
	var zero T
	delay := p.BaseDelay
	for attempt := 1; ; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		if attempt >= p.Attempts || !Transient(err) {
			return zero, err
		}
		select {
		case <-time.After(jittered(delay, p.Jitter)):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
		delay *= 2
		if delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}
}

func jittered(delay time.Duration, factor float64) time.Duration {
	if factor <= 0 {
		return delay
	}
	spread := float64(delay) * factor * (rand.Float64()*2 - 1)
	return time.Duration(float64(delay) + spread)
}
