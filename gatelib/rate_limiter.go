package gatelib

import (
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter limits a number of requests per client IP.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	lastUsed map[string]time.Time
	mu       sync.RWMutex
	r        rate.Limit
	b        int
	cleanup  time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a new rate limiter.
// r is the rate limit (requests per second).
// b is the burst size (max requests in a burst).
// cleanup is how often to clean up old entries.
func NewRateLimiter(r rate.Limit, b int, cleanup time.Duration) *RateLimiter {
	rl := &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		lastUsed: make(map[string]time.Time),
		r:        r,
		b:        b,
		cleanup:  cleanup,
		stopCh:   make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Allow checks if a request from the given IP should be allowed.
func (rl *RateLimiter) Allow(ip net.IP) bool {
	// raw bytes дешевле ip.String()
	key := string(ip.To16())

	rl.mu.RLock()
	limiter, exists := rl.limiters[key]
	rl.mu.RUnlock()

	if exists {
		return limiter.Allow()
	}

	rl.mu.Lock()
	// другая горутина могла добавить лимитер между RUnlock и Lock
	limiter, exists = rl.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(rl.r, rl.b)
		rl.limiters[key] = limiter
	}
	rl.lastUsed[key] = time.Now()
	rl.mu.Unlock()

	return limiter.Allow()
}

// Size returns a number of tracked IPs.
func (rl *RateLimiter) Size() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	return len(rl.limiters)
}

// Stop stops the cleanup goroutine. It is safe to call it many times.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopCh)
	})
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanup)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCh:
			return
		case <-ticker.C:
			rl.mu.Lock()
			now := time.Now()

			for key, lastUsed := range rl.lastUsed {
				if now.Sub(lastUsed) > rl.cleanup*2 {
					delete(rl.limiters, key)
					delete(rl.lastUsed, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}
