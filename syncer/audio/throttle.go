package audio

import (
	"context"
	"errors"
	"log"
	"time"
)

// ErrSessionThrottled is returned when throttling persists after the
// second backoff wait. The whole session aborts: continuing only
// deepens the block.
var ErrSessionThrottled = errors.New("provider throttling persisted after backoff; aborting session")

// ThrottleState tracks provider throttling events across a run and
// escalates the response: wait, wait longer, abort.
type ThrottleState struct {
	waitInitial time.Duration
	waitSecond  time.Duration
	strikes     int
}

// NewThrottleState creates the escalation ladder.
func NewThrottleState(waitInitial, waitSecond time.Duration) *ThrottleState {
	return &ThrottleState{
		waitInitial: waitInitial,
		waitSecond:  waitSecond,
	}
}

// Strikes returns the number of throttle events seen this run.
func (t *ThrottleState) Strikes() int { return t.strikes }

// Register records a throttle event and blocks for the appropriate
// backoff. On the third event it returns ErrSessionThrottled without
// waiting.
func (t *ThrottleState) Register(ctx context.Context) error {
	t.strikes++

	var wait time.Duration
	switch t.strikes {
	case 1:
		wait = t.waitInitial
	case 2:
		wait = t.waitSecond
	default:
		log.Printf("ERROR: throttle_session_abort strikes=%d", t.strikes)
		return ErrSessionThrottled
	}

	log.Printf("WARN: throttle_backoff strike=%d wait=%s", t.strikes, wait)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}
