package mdblog

import (
	"context"
	"testing"
	"time"
)

func TestVisitorLimiterBlocksAfterMax(t *testing.T) {
	limiter := NewVisitorLimiter(2, 200*time.Millisecond)
	ip := "203.0.113.10"

	if !limiter.Allow(ip) {
		t.Fatalf("expected first visitor to be allowed")
	}
	if !limiter.Allow(ip) {
		t.Fatalf("expected second visitor to be allowed")
	}
	if limiter.Allow(ip) {
		t.Fatalf("expected third visitor to be blocked")
	}
}

func TestVisitorLimiterResetsAfterWindow(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewVisitorLimiter(1, time.Minute)
	limiter.now = func() time.Time { return now }
	ip := "203.0.113.20"

	if !limiter.Allow(ip) {
		t.Fatalf("expected first visitor to be allowed")
	}
	if limiter.Allow(ip) {
		t.Fatalf("expected second visitor to be blocked")
	}

	now = now.Add(61 * time.Second)
	if !limiter.Allow(ip) {
		t.Fatalf("expected visitor after window to be allowed")
	}
}

func TestVisitorLimiterIsPerIP(t *testing.T) {
	limiter := NewVisitorLimiter(1, 200*time.Millisecond)

	if !limiter.Allow("203.0.113.30") {
		t.Fatalf("expected first ip to be allowed")
	}
	if !limiter.Allow("203.0.113.31") {
		t.Fatalf("expected second ip to be allowed independently")
	}
	if limiter.Allow("203.0.113.30") {
		t.Fatalf("expected first ip to be blocked after max")
	}
}

func TestVisitorLimiterCleanup(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewVisitorLimiter(3, time.Minute)
	limiter.now = func() time.Time { return now }

	limiter.Allow("203.0.113.40")
	limiter.Allow("203.0.113.41")
	if got := limiter.Len(); got != 2 {
		t.Fatalf("Len = %d, want 2", got)
	}

	now = now.Add(2 * time.Minute)
	limiter.cleanup()
	if got := limiter.Len(); got != 0 {
		t.Fatalf("Len after cleanup = %d, want 0", got)
	}
}

func TestVisitorLimiterRunStops(t *testing.T) {
	limiter := NewVisitorLimiter(1, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- limiter.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
