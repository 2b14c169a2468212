package mdblog

import (
	"context"
	"sync"
	"time"
)

// VisitorLimiter caps how many new visitor states a single IP may create per
// sliding window. It keeps cookie-less clients from filling the state
// registry.
type VisitorLimiter struct {
	mu      sync.Mutex
	created map[string][]time.Time
	max     int
	window  time.Duration
	now     func() time.Time
}

// NewVisitorLimiter creates a VisitorLimiter that allows max creations per window.
func NewVisitorLimiter(max int, window time.Duration) *VisitorLimiter {
	return &VisitorLimiter{
		created: make(map[string][]time.Time),
		max:     max,
		window:  window,
		now:     time.Now,
	}
}

// Run drops expired entries every window until ctx is done.
func (l *VisitorLimiter) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			l.cleanup()
		}
	}
}

func (l *VisitorLimiter) cleanup() {
	cutoff := l.now().Add(-l.window)
	l.mu.Lock()
	defer l.mu.Unlock()
	for ip, hits := range l.created {
		kept := prune(hits, cutoff)
		if len(kept) == 0 {
			delete(l.created, ip)
		} else {
			l.created[ip] = kept
		}
	}
}

// Allow reports whether ip is under the limit and, if so, records a creation.
func (l *VisitorLimiter) Allow(ip string) bool {
	now := l.now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	kept := prune(l.created[ip], cutoff)
	if len(kept) >= l.max {
		l.created[ip] = kept
		return false
	}
	l.created[ip] = append(kept, now)
	return true
}

// Len returns the number of tracked IPs.
func (l *VisitorLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.created)
}

func prune(hits []time.Time, cutoff time.Time) []time.Time {
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}
