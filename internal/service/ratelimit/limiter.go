// Package ratelimit is a keyed token bucket used to protect the HTTP endpoints.
package ratelimit

import (
	"sync"
	"time"
)

// Rule is a bucket shape: Burst tokens, refilled at PerSecond.
type Rule struct {
	Burst     float64
	PerSecond float64
}

// PerSecond builds a rule allowing n requests per second with a burst of n.
// n <= 0 disables limiting for that rule.
func PerSecond(n int) Rule {
	return Rule{Burst: float64(n), PerSecond: float64(n)}
}

// Unlimited reports whether the rule never rejects.
func (r Rule) Unlimited() bool { return r.PerSecond <= 0 || r.Burst <= 0 }

type bucket struct {
	tokens float64
	last   time.Time
}

type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

func New() *Limiter {
	return &Limiter{buckets: make(map[string]*bucket), now: time.Now}
}

// Allow consumes one token for key under rule and reports whether it was available.
func (l *Limiter) Allow(key string, rule Rule) bool {
	if rule.Unlimited() {
		return true
	}

	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: rule.Burst, last: now}
		l.buckets[key] = b
	}

	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens += elapsed * rule.PerSecond
		if b.tokens > rule.Burst {
			b.tokens = rule.Burst
		}
		b.last = now
	}

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Prune drops buckets idle for longer than maxIdle.
func (l *Limiter) Prune(maxIdle time.Duration) int {
	cutoff := l.now().Add(-maxIdle)
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for k, b := range l.buckets {
		if b.last.Before(cutoff) {
			delete(l.buckets, k)
			n++
		}
	}
	return n
}
