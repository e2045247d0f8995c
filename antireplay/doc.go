// Package antireplay provides caches which detect replayed nonces.
//
// # Overview
//
// Every authenticated message carries a 128-bit nonce. A nonce is meant
// to appear at most once within a replay window. Caches of this package
// implement [gatelib.AntiReplayCache]: TryAccept returns true for a
// nonce which was not seen within the window and remembers it.
//
// # Generational cache
//
// The main implementation keeps 2 generations of nonce sets: current and
// expiring. New nonces go to the current generation. On rotation, the
// expiring generation is dropped, the current one becomes expiring and a
// new empty current generation is allocated. A nonce is a replay if it
// is found in any of the generations.
//
// A nonce accepted at time T stays findable until at least T+window and
// is forgotten not later than T+2*window (for RotateOnSchedule).
//
// Rotation policies:
//
//   - RotateOnSchedule (default) rotates when window has passed since the
//     previous rotation. Memory is bounded by nonces of 2 windows
//     regardless of the traffic rate.
//   - RotateOnIdle rotates only if there were no calls for longer than
//     window. Under sustained traffic it never rotates and memory grows
//     without bound. It is kept for compatibility with older deployments.
//
// Duplicate policies:
//
//   - RejectSeen (default) rejects a nonce found in any generation.
//   - LegacyAcceptExpiring reproduces an old behaviour: a nonce which is
//     not in the current generation is accepted even if it is in the
//     expiring one, and a duplicate of the current generation is accepted
//     if it is also in the expiring one. This lets cross-generation
//     replays through. Use only for compatibility testing.
//
// # Stable Bloom Filter
//
// An alternative implementation uses a Stable Bloom Filter. It has
// constant memory usage but it is approximate in both directions: a
// small share of fresh nonces is rejected (false positives) and old
// nonces are eventually forgotten at a rate which depends on traffic,
// not on time.
//
// Based on "Approximately Detecting Duplicates for Streaming Data using
// Stable Bloom Filters" by Deng and Rafiei (2006).
//
// # Monitoring
//
// [WithMetrics] wraps any cache with atomic counters of checks and
// detected replays.
package antireplay
