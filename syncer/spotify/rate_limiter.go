package spotify

import (
	"context"
	"sync"
	"time"
)

// RateLimiter implements a sliding window rate limiter over API
// calls. Even though the sync itself is strictly sequential, playlist
// pagination can burst requests faster than the API tolerates.
type RateLimiter struct {
	mu           sync.Mutex
	requestTimes []time.Time
	maxRequests  int
	windowSize   time.Duration
}

// NewRateLimiter creates a rate limiter allowing maxRequests per
// window.
func NewRateLimiter(maxRequests int, windowSeconds float64) *RateLimiter {
	return &RateLimiter{
		requestTimes: make([]time.Time, 0),
		maxRequests:  maxRequests,
		windowSize:   time.Duration(windowSeconds * float64(time.Second)),
	}
}

// WaitIfNeeded blocks until a request can be made, respecting the
// window. It returns early with the context error on cancellation.
func (rl *RateLimiter) WaitIfNeeded(ctx context.Context) error {
	if rl.maxRequests <= 0 {
		return nil
	}

	for {
		rl.mu.Lock()
		now := time.Now()
		windowStart := now.Add(-rl.windowSize)

		valid := rl.requestTimes[:0]
		for _, t := range rl.requestTimes {
			if t.After(windowStart) {
				valid = append(valid, t)
			}
		}
		rl.requestTimes = valid

		if len(rl.requestTimes) < rl.maxRequests {
			rl.requestTimes = append(rl.requestTimes, now)
			rl.mu.Unlock()
			return nil
		}

		oldest := rl.requestTimes[0]
		waitTime := rl.windowSize - now.Sub(oldest)
		rl.mu.Unlock()

		if waitTime <= 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}
}
