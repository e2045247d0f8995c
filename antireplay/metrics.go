package antireplay

import (
	"sync/atomic"

	"github.com/influxgate/influxgate/gatelib"
)

// Metrics is a snapshot of anti-replay statistics.
type Metrics struct {
	TotalChecks    uint64  // Total number of TryAccept calls
	ReplayDetected uint64  // Number of rejected nonces
	UniqueMessages uint64  // Number of accepted nonces
	ReplayRate     float64 // Percentage of replays (0.0 to 100.0)
}

// CacheWithMetrics wraps an anti-replay cache with counters.
type CacheWithMetrics struct {
	cache gatelib.AntiReplayCache

	// atomic counters for lock-free reads
	totalChecks    uint64
	replayDetected uint64
	uniqueMessages uint64
}

// TryAccept delegates to the wrapped cache and counts the result.
func (c *CacheWithMetrics) TryAccept(nonce gatelib.Uint128) bool {
	atomic.AddUint64(&c.totalChecks, 1)

	accepted := c.cache.TryAccept(nonce)

	if accepted {
		atomic.AddUint64(&c.uniqueMessages, 1)
	} else {
		atomic.AddUint64(&c.replayDetected, 1)
	}

	return accepted
}

// Unwrap returns the wrapped cache. Optional interfaces like
// [gatelib.AntiReplayCacheSizer] are looked up there.
func (c *CacheWithMetrics) Unwrap() gatelib.AntiReplayCache {
	return c.cache
}

// GetMetrics returns current statistics.
func (c *CacheWithMetrics) GetMetrics() Metrics {
	totalChecks := atomic.LoadUint64(&c.totalChecks)
	replayDetected := atomic.LoadUint64(&c.replayDetected)
	uniqueMessages := atomic.LoadUint64(&c.uniqueMessages)

	var replayRate float64
	if totalChecks > 0 {
		replayRate = float64(replayDetected) / float64(totalChecks) * 100.0
	}

	return Metrics{
		TotalChecks:    totalChecks,
		ReplayDetected: replayDetected,
		UniqueMessages: uniqueMessages,
		ReplayRate:     replayRate,
	}
}

// ResetMetrics resets all counters to zero. It does not touch the
// wrapped cache.
func (c *CacheWithMetrics) ResetMetrics() {
	atomic.StoreUint64(&c.totalChecks, 0)
	atomic.StoreUint64(&c.replayDetected, 0)
	atomic.StoreUint64(&c.uniqueMessages, 0)
}

// WithMetrics returns an instrumented anti-replay cache.
func WithMetrics(cache gatelib.AntiReplayCache) *CacheWithMetrics {
	return &CacheWithMetrics{
		cache: cache,
	}
}

var _ gatelib.AntiReplayCache = (*CacheWithMetrics)(nil)
var _ gatelib.AntiReplayCacheWrapper = (*CacheWithMetrics)(nil)
