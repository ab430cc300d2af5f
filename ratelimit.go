package main

import (
	"context"
	"sync"
	"time"
)

const rateLimitIdle = 5 * time.Minute

// rateLimiter is a per-client token bucket.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*bucket
	rate     int           // tokens per interval
	interval time.Duration // refill interval
	now      func() time.Time
}

type bucket struct {
	tokens   int
	lastSeen time.Time
}

func newRateLimiter(rate int, interval time.Duration) *rateLimiter {
	return &rateLimiter{
		visitors: make(map[string]*bucket),
		rate:     rate,
		interval: interval,
		now:      time.Now,
	}
}

// cleanup drops idle visitors every minute until ctx is done.
func (rl *rateLimiter) cleanup(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.prune()
		}
	}
}

func (rl *rateLimiter) prune() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, b := range rl.visitors {
		if rl.now().Sub(b.lastSeen) > rateLimitIdle {
			delete(rl.visitors, key)
		}
	}
}

func (rl *rateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.visitors[key]
	if !ok {
		rl.visitors[key] = &bucket{tokens: rl.rate - 1, lastSeen: now}
		return true
	}

	if refill := int(now.Sub(b.lastSeen) / rl.interval); refill > 0 {
		b.tokens = min(b.tokens+refill*rl.rate, rl.rate)
		b.lastSeen = now
	}

	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}
