package gatelib

import (
	"context"
	"net"
	"time"
)

// AntiReplayCache remembers nonces of accepted messages.
//
// TryAccept returns true if nonce was not seen within the replay window
// and records it. It returns false if this is a replay. Implementations
// must be safe for concurrent use: two concurrent calls with the same
// nonce must not both return true.
type AntiReplayCache interface {
	TryAccept(nonce Uint128) bool
}

// AntiReplayCacheSizer is an optional interface of [AntiReplayCache]
// which reports a number of remembered nonces: in the current and in the
// expiring generations.
type AntiReplayCacheSizer interface {
	Size() (current, expiring int)
}

// AntiReplayCacheWrapper is implemented by decorators of
// [AntiReplayCache]. Optional interfaces are searched through the chain
// of wrapped caches.
type AntiReplayCacheWrapper interface {
	Unwrap() AntiReplayCache
}

// TelemetrySink accepts validated records for persistence.
//
// Send is called after authentication is completed and a response
// status is decided. It must not block on I/O: delivery failures are
// the sink's business and never affect a caller.
type TelemetrySink interface {
	Send(ctx context.Context, record TelemetryRecord)
}

// IPBlocklist filters client addresses.
type IPBlocklist interface {
	Contains(net.IP) bool
	Shutdown()
}

// Event is a data structure which is used to notify about something
// which happened in the gate.
type Event interface {
	// StreamID returns an identifier of the request. Events without a
	// request return an empty string.
	StreamID() string

	// Timestamp returns a time when event was generated.
	Timestamp() time.Time
}

// EventStream is an abstraction which accepts events and routes them to
// observers.
type EventStream interface {
	Send(context.Context, Event)
}

// Logger defines an interface of the logger used by gatelib.
type Logger interface {
	Named(name string) Logger

	BindInt(name string, value int) Logger
	BindStr(name, value string) Logger
	BindJSON(name, value string) Logger

	Printf(format string, args ...interface{})

	Info(msg string)
	InfoError(msg string, err error)

	Warning(msg string)
	WarningError(msg string, err error)

	Debug(msg string)
	DebugError(msg string, err error)
}
