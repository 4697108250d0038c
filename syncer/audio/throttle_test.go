package audio

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestThrottleState_Ladder(t *testing.T) {
	ts := NewThrottleState(20*time.Millisecond, 50*time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	if err := ts.Register(ctx); err != nil {
		t.Fatalf("First strike should wait, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("First strike waited only %v", elapsed)
	}

	start = time.Now()
	if err := ts.Register(ctx); err != nil {
		t.Fatalf("Second strike should wait, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("Second strike waited only %v", elapsed)
	}

	if err := ts.Register(ctx); !errors.Is(err, ErrSessionThrottled) {
		t.Errorf("Third strike should abort the session, got %v", err)
	}
	if ts.Strikes() != 3 {
		t.Errorf("Expected 3 strikes, got %d", ts.Strikes())
	}
}

func TestThrottleState_ContextCancellation(t *testing.T) {
	ts := NewThrottleState(time.Hour, time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := ts.Register(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected DeadlineExceeded, got %v", err)
	}
}
