package network

import (
	"context"
	"net"
	"sync"
	"time"
)

// cooldownDialer is a circuit breaker with 2 states: available and
// cooldown.
//
// After threshold consecutive failures dialer refuses to dial for a
// cooldown period. First successful dial resets a counter.
type cooldownDialer struct {
	Dialer

	mutex         sync.Mutex
	failures      uint32
	cooldownUntil time.Time
	threshold     uint32
	cooldown      time.Duration
	now           func() time.Time
}

func (c *cooldownDialer) Dial(network, address string) (net.Conn, error) {
	return c.DialContext(context.Background(), network, address)
}

func (c *cooldownDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	if c.inCooldown() {
		return nil, ErrCircuitBreakerOpened
	}

	conn, err := c.Dialer.DialContext(ctx, network, address)

	// Отмена вызывающей стороной не считается отказом апстрима.
	if ctxErr := ctx.Err(); ctxErr != nil {
		if conn != nil {
			conn.Close()
		}

		return nil, ctxErr //nolint: wrapcheck
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if err == nil {
		c.failures = 0
		c.cooldownUntil = time.Time{}

		return conn, nil
	}

	c.failures++

	if c.failures >= c.threshold {
		c.cooldownUntil = c.now().Add(c.cooldown)
		c.failures = 0
	}

	return nil, err //nolint: wrapcheck
}

func (c *cooldownDialer) inCooldown() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return !c.cooldownUntil.IsZero() && c.now().Before(c.cooldownUntil)
}

// NewCircuitBreakerDialer wraps a dialer with a circuit breaker.
//
// Zero threshold and cooldown mean default values.
func NewCircuitBreakerDialer(baseDialer Dialer, threshold uint32, cooldown time.Duration) Dialer {
	if threshold == 0 {
		threshold = DefaultCircuitBreakerThreshold
	}

	if cooldown == 0 {
		cooldown = DefaultCircuitBreakerCooldown
	}

	return newCooldownDialer(baseDialer, threshold, cooldown, time.Now)
}

func newCooldownDialer(baseDialer Dialer,
	threshold uint32, cooldown time.Duration, now func() time.Time,
) *cooldownDialer {
	return &cooldownDialer{
		Dialer:    baseDialer,
		threshold: threshold,
		cooldown:  cooldown,
		now:       now,
	}
}
