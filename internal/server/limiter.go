package server

import (
	"sync"
	"time"
)

// rateLimiter throttles room create/join bursts per client address.
type rateLimiter struct {
	mu   sync.Mutex
	last map[string]time.Time
}

func newRateLimiter() *rateLimiter {
	return &rateLimiter{last: make(map[string]time.Time)}
}

func (l *rateLimiter) Allow(key string, minInterval time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	if previous, ok := l.last[key]; ok && now.Sub(previous) < minInterval {
		return false
	}
	l.last[key] = now
	return true
}
