// Package retry repeats failed backend calls with exponential backoff.
package retry

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Policy says how often and how long to wait between attempts.
type Policy struct {
	// Attempts counts the first call. Values below 1 mean one attempt.
	Attempts int

	BaseDelay time.Duration
	MaxDelay  time.Duration

	// Jitter spreads each delay by up to this fraction either way.
	Jitter float64

	// Retryable decides which errors are worth another attempt.
	// Nil retries nothing.
	Retryable func(error) bool

	// OnRetry runs before sleeping for the next attempt.
	OnRetry func(next int, err error, wait time.Duration)
}

// BackendPolicy is tuned for the Recyclify API: three attempts, starting at
// 300ms and capped at 5s.
func BackendPolicy(retryable func(error) bool) Policy {
	return Policy{
		Attempts:  3,
		BaseDelay: 300 * time.Millisecond,
		MaxDelay:  5 * time.Second,
		Jitter:    0.2,
		Retryable: retryable,
	}
}

// Do calls op until it succeeds, returns an error that is not retryable,
// runs out of attempts or ctx ends. attempt starts at 1. The last error from
// op is returned; ctx.Err() only when op never ran.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context, attempt int) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var last error
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			if last != nil {
				return last
			}
			return err
		}

		last = op(ctx, attempt)
		if last == nil {
			return nil
		}
		if attempt >= attempts || p.Retryable == nil || !p.Retryable(last) {
			return last
		}

		wait := p.Backoff(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt+1, last, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return last
		case <-timer.C:
		}
	}
}

// Backoff is the wait after the given failed attempt: BaseDelay doubled per
// attempt, capped at MaxDelay, then jittered.
func (p Policy) Backoff(attempt int) time.Duration {
	d := float64(p.BaseDelay) * math.Pow(2, float64(attempt-1))
	if p.MaxDelay > 0 && d > float64(p.MaxDelay) {
		d = float64(p.MaxDelay)
	}
	if p.Jitter > 0 {
		d += d * p.Jitter * (rand.Float64()*2 - 1)
	}
	if d < 0 {
		return 0
	}
	return time.Duration(d)
}
