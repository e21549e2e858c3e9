package ratelimit

import (
	"math"
	"sync"
	"time"
)

// DefaultCooldown is the minimum interval between two accepted sends from the
// same identity.
const DefaultCooldown = 5 * time.Second

// Limiter tracks the last accepted send time per identity. Identities are
// opaque strings; anonymous senders collapse onto one shared key.
type Limiter struct {
	mu       sync.Mutex
	cooldown time.Duration
	last     map[string]time.Time
}

// New creates a limiter with the given cooldown, falling back to
// DefaultCooldown for non-positive values.
func New(cooldown time.Duration) *Limiter {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Limiter{
		cooldown: cooldown,
		last:     make(map[string]time.Time),
	}
}

// Cooldown returns the configured minimum send interval.
func (l *Limiter) Cooldown() time.Duration {
	return l.cooldown
}

// CheckAndRecord reports whether identity may send at now. The check and the
// record happen under one lock so a burst of concurrent sends cannot all pass
// the gate before the first one is recorded. On reject the stored time is left
// untouched and the number of whole seconds to wait is returned.
func (l *Limiter) CheckAndRecord(identity string, now time.Time) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if last, ok := l.last[identity]; ok {
		if elapsed := now.Sub(last); elapsed < l.cooldown {
			remaining := l.cooldown - elapsed
			return false, int(math.Ceil(remaining.Seconds()))
		}
	}

	l.last[identity] = now
	return true, 0
}

// Sweep drops identities whose last accepted send is older than maxAge and
// returns how many entries were evicted. Callers run this periodically so the
// map does not grow forever.
func (l *Limiter) Sweep(now time.Time, maxAge time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	evicted := 0
	for identity, last := range l.last {
		if now.Sub(last) > maxAge {
			delete(l.last, identity)
			evicted++
		}
	}
	return evicted
}
