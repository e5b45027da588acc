// Package retry wraps a function with bounded exponential backoff.
package retry

import (
	"context"
	"time"
)

type Policy struct {
	// MaxAttempts caps total calls, including the first one.
	MaxAttempts int
	// BaseDelay is the delay after the first failure; it doubles per
	// attempt up to MaxDelay.
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

var DefaultPolicy = Policy{
	MaxAttempts: 5,
	BaseDelay:   250 * time.Millisecond,
	MaxDelay:    5 * time.Second,
}

type shouldRetry func(err error) bool

// Do calls f until it succeeds, shouldRetry rejects the error, the
// attempt ceiling is hit, or ctx is cancelled. The last error is
// returned on exhaustion.
func Do(ctx context.Context, p Policy, f func() error, retryable shouldRetry) error {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultPolicy.MaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultPolicy.BaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = DefaultPolicy.MaxDelay
	}

	delay := p.BaseDelay

	var err error
	for attempt := 1; ; attempt++ {
		err = f()
		if err == nil {
			return nil
		}
		if retryable != nil && !retryable(err) {
			return err
		}
		if attempt >= p.MaxAttempts {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
		if delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}
}
