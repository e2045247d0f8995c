package antireplay

import (
	"sync"
	"time"

	"github.com/influxgate/influxgate/gatelib"
)

// RotationPolicy defines when generations are rotated.
type RotationPolicy uint8

const (
	// RotateOnSchedule rotates generations each window.
	RotateOnSchedule RotationPolicy = iota

	// RotateOnIdle rotates generations only after a gap between 2 calls
	// which is longer than window.
	RotateOnIdle
)

func (r RotationPolicy) String() string {
	switch r {
	case RotateOnSchedule:
		return "schedule"
	case RotateOnIdle:
		return "idle"
	}

	return "unknown"
}

// DuplicatePolicy defines how membership in generations maps to the
// accept/reject decision.
type DuplicatePolicy uint8

const (
	// RejectSeen rejects a nonce which is present in any generation.
	RejectSeen DuplicatePolicy = iota

	// LegacyAcceptExpiring accepts a nonce if it is new to the current
	// generation or if it is present in the expiring one.
	LegacyAcceptExpiring
)

func (d DuplicatePolicy) String() string {
	switch d {
	case RejectSeen:
		return "reject-seen"
	case LegacyAcceptExpiring:
		return "legacy-accept-expiring"
	}

	return "unknown"
}

type generation map[gatelib.Uint128]struct{}

// GenerationalStats is a snapshot of the cache state.
type GenerationalStats struct {
	Current   int
	Expiring  int
	Rotations uint64
}

// Generational is a time-windowed nonce cache with 2 generations. Please
// see package documentation for details.
type Generational struct {
	mutex sync.Mutex

	current      generation
	expiring     generation
	lastActivity time.Time
	lastRotation time.Time
	rotations    uint64

	window     time.Duration
	rotation   RotationPolicy
	duplicates DuplicatePolicy
	now        func() time.Time
}

// GenerationalOption customizes a generational cache.
type GenerationalOption func(*Generational)

// WithClock sets a source of the current time. Default is time.Now.
func WithClock(now func() time.Time) GenerationalOption {
	return func(g *Generational) {
		g.now = now
	}
}

// WithRotationPolicy sets a rotation policy. Default is
// RotateOnSchedule.
func WithRotationPolicy(policy RotationPolicy) GenerationalOption {
	return func(g *Generational) {
		g.rotation = policy
	}
}

// WithDuplicatePolicy sets a duplicate policy. Default is RejectSeen.
func WithDuplicatePolicy(policy DuplicatePolicy) GenerationalOption {
	return func(g *Generational) {
		g.duplicates = policy
	}
}

// TryAccept returns true if nonce is accepted and records it. False
// means that nonce is a replay.
func (g *Generational) TryAccept(nonce gatelib.Uint128) bool {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	now := g.now()

	g.maybeRotate(now)
	g.lastActivity = now

	_, inCurrent := g.current[nonce]
	_, inExpiring := g.expiring[nonce]

	if g.duplicates == LegacyAcceptExpiring {
		if !inCurrent {
			g.current[nonce] = struct{}{}

			return true
		}

		return inExpiring
	}

	// Решение монотонно по inCurrent: дубликат текущего поколения
	// отклоняется всегда, независимо от expiring.
	if inCurrent || inExpiring {
		return false
	}

	g.current[nonce] = struct{}{}

	return true
}

// Contains reports if nonce is remembered. It does not rotate
// generations and does not count as an activity.
func (g *Generational) Contains(nonce gatelib.Uint128) bool {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	_, inCurrent := g.current[nonce]
	_, inExpiring := g.expiring[nonce]

	return inCurrent || inExpiring
}

// Size returns sizes of the current and expiring generations.
func (g *Generational) Size() (int, int) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	return len(g.current), len(g.expiring)
}

// Stats returns a snapshot of the cache state.
func (g *Generational) Stats() GenerationalStats {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	return GenerationalStats{
		Current:   len(g.current),
		Expiring:  len(g.expiring),
		Rotations: g.rotations,
	}
}

// Window returns a replay window.
func (g *Generational) Window() time.Duration {
	return g.window
}

func (g *Generational) maybeRotate(now time.Time) {
	if g.rotation == RotateOnIdle {
		if now.Sub(g.lastActivity) > g.window {
			g.rotate(now)
		}

		return
	}

	elapsed := now.Sub(g.lastRotation)

	switch {
	case elapsed >= 2*g.window:
		// Оба поколения старше окна: всё, что в current, было вставлено
		// до lastRotation+window.
		g.rotate(now)
		g.rotate(now)
	case elapsed >= g.window:
		g.rotate(now)
	}
}

// rotate drops the expiring generation and moves current one into its
// slot. Order is important: current must be moved before the new one is
// allocated.
func (g *Generational) rotate(now time.Time) {
	hint := (len(g.current) + len(g.expiring)) / 2 //nolint: gomnd

	g.expiring = g.current
	g.current = make(generation, hint)
	g.lastRotation = now
	g.rotations++
}

// NewGenerational builds a new generational cache.
//
// window is a replay window. It should not be shorter than a maximal
// validity of messages, otherwise a message can be replayed while it is
// still fresh. If window is not positive, DefaultWindow is used.
func NewGenerational(window time.Duration, opts ...GenerationalOption) *Generational {
	if window <= 0 {
		window = DefaultWindow
	}

	rv := &Generational{
		current:  generation{},
		expiring: generation{},
		window:   window,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(rv)
	}

	now := rv.now()
	rv.lastActivity = now
	rv.lastRotation = now

	return rv
}

var _ gatelib.AntiReplayCache = (*Generational)(nil)
var _ gatelib.AntiReplayCacheSizer = (*Generational)(nil)
