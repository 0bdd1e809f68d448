package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWaitForReturnsAfterDelay(t *testing.T) {
	original := after
	defer func() { after = original }()

	var requested time.Duration
	after = func(d time.Duration) <-chan time.Time {
		requested = d
		ch := make(chan time.Time, 1)
		ch <- time.Now()
		return ch
	}

	if err := WaitFor(context.Background(), 2*time.Second); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if requested != 2*time.Second {
		t.Fatalf("expected 2s wait, got %s", requested)
	}
}

func TestWaitForSkipsNonPositiveDelay(t *testing.T) {
	original := after
	defer func() { after = original }()

	after = func(time.Duration) <-chan time.Time {
		t.Fatal("timer must not be created for zero delay")
		return nil
	}

	if err := WaitFor(context.Background(), 0); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestWaitForHonoursCancellation(t *testing.T) {
	original := after
	defer func() { after = original }()

	after = func(time.Duration) <-chan time.Time {
		return make(chan time.Time)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WaitFor(ctx, time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
