package retry

import (
	"context"
	"errors"
	"log"
	"math"
	"math/rand"
	"time"
)

// Policy computes the delay before a given retry attempt.
// Attempt numbering starts at 0 for the delay after the first failure.
type Policy interface {
	Delay(attempt int) time.Duration
}

// Fixed waits the same duration between every attempt.
type Fixed time.Duration

func (f Fixed) Delay(int) time.Duration { return time.Duration(f) }

// Exponential grows the delay by Multiplier per attempt, capped at
// Max. With Jitter set, each delay is scaled by a random factor in
// [0.5, 1.0] to avoid synchronized retries.
type Exponential struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
	Jitter     bool
}

func (e Exponential) Delay(attempt int) time.Duration {
	multiplier := e.Multiplier
	if multiplier <= 0 {
		multiplier = 2.0
	}
	d := time.Duration(float64(e.Initial) * math.Pow(multiplier, float64(attempt)))
	if e.Max > 0 && d > e.Max {
		d = e.Max
	}
	if e.Jitter {
		d = time.Duration(float64(d) * (0.5 + rand.Float64()/2))
	}
	return d
}

type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks an error as non-retryable: Do returns the wrapped
// error immediately instead of running further attempts.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do runs op up to attempts times, sleeping per the policy between
// failures. It returns nil on the first success, the last error after
// the final attempt, or the context error if cancelled while waiting.
// An error wrapped with Permanent stops the attempts at once.
func Do(ctx context.Context, attempts int, policy Policy, op func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(lastErr, &perm) {
			return perm.err
		}

		if attempt == attempts-1 {
			break
		}

		delay := policy.Delay(attempt)
		log.Printf("INFO: retry attempt=%d max_attempts=%d wait=%s error=%v", attempt+1, attempts, delay, lastErr)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return lastErr
}
