// Package gatelib is an ingestion checkpoint for signed telemetry.
//
// The package authenticates assertions produced by telemetry collectors
// and hands validated records to a sink. An assertion is a pair of a
// message (compact JSON text) and a base64-encoded keyed MAC of that
// text. A message carries a single-use nonce, an expiry and a telemetry
// payload.
//
// Authentication is a fixed sequence of stages:
//
//  1. signature verification (constant time comparison);
//  2. message decoding;
//  3. freshness check against the current time and the maximal validity;
//  4. replay detection through an [AntiReplayCache].
//
// The first failing stage terminates the request with one of the
// sentinel errors of this package. Stages 1-3 are pure, so a request
// which fails any of them never touches the anti-replay cache.
//
// [Pipeline] implements this sequence and [Gate] exposes it over HTTP.
// Everything else (observability, sinks, ip lists) is pluggable through
// interfaces defined in this package.
package gatelib

import "time"

const (
	// DefaultMaxValidity is a default maximal time range between now and
	// an expiry of the message.
	DefaultMaxValidity = time.Minute

	// DefaultMaxBodySize limits a size of the request body for /update.
	DefaultMaxBodySize = 64 * 1024

	// DefaultReadHeaderTimeout is a timeout to read request headers.
	DefaultReadHeaderTimeout = 10 * time.Second

	// DefaultIdleTimeout is a timeout for keep-alive connections.
	DefaultIdleTimeout = time.Minute

	// DefaultRateLimitBurst is a burst size of per-ip rate limiter.
	DefaultRateLimitBurst = 20

	// DefaultRateLimiterCleanup is how often idle per-ip limiters are
	// evicted.
	DefaultRateLimiterCleanup = time.Minute

	// DefaultReplayCacheReportInterval is how often a size of the
	// anti-replay cache is reported to the event stream.
	DefaultReplayCacheReportInterval = 15 * time.Second

	// DefaultShutdownTimeout is a time given to in-flight requests on
	// shutdown.
	DefaultShutdownTimeout = 10 * time.Second

	// SecretKeyLength is a length of the shared secret key in bytes.
	SecretKeyLength = 32

	// UpdatePath is an HTTP path collectors post their assertions to.
	UpdatePath = "/update"

	// ContentTypeJSON is the only content type /update understands.
	ContentTypeJSON = "application/json"
)
