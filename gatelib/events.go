package gatelib

import (
	"net"
	"time"
)

type eventBase struct {
	streamID  string
	timestamp time.Time
}

// StreamID returns an ID of the request this event belongs to.
func (e eventBase) StreamID() string {
	return e.streamID
}

// Timestamp return a time when this event was generated.
func (e eventBase) Timestamp() time.Time {
	return e.timestamp
}

// EventRequestStart is emitted when gate starts to process a new
// request.
type EventRequestStart struct {
	eventBase

	// RemoteIP is an IP address of the client.
	RemoteIP net.IP

	// Path is a requested path.
	Path string
}

// EventRequestFinish is emitted when a response is written.
type EventRequestFinish struct {
	eventBase

	// Status is an HTTP status of the response.
	Status int

	// Duration is a time spent on the request.
	Duration time.Duration
}

// EventAuthenticated is emitted when assertion passed all stages of the
// pipeline.
type EventAuthenticated struct {
	eventBase

	// Name is a name of the service from the telemetry record.
	Name string
}

// EventAuthRejected is emitted when assertion is rejected by the
// pipeline.
type EventAuthRejected struct {
	eventBase

	// Reason is one of the sentinel errors: ErrSignatureFormat,
	// ErrInvalidSignature, ErrInvalidMessage, ErrExpired,
	// ErrLongValidity or ErrNonceReuse.
	Reason error
}

// EventReplayAttack is emitted when gate detects a reused nonce.
type EventReplayAttack struct {
	eventBase
}

// EventIPBlocklisted is emitted when request was declined because IP
// address was found in IP blocklist or was not found in IP allowlist.
type EventIPBlocklisted struct {
	eventBase

	RemoteIP    net.IP
	IsBlockList bool
}

// EventRateLimited is emitted when request was declined by per-ip rate
// limiter.
type EventRateLimited struct {
	eventBase

	RemoteIP net.IP
}

// EventSinkWrite is emitted when a batch of records was written to the
// storage (or failed to).
type EventSinkWrite struct {
	eventBase

	// Count is a number of records in the batch.
	Count int

	// Failed is true if the storage rejected the batch.
	Failed bool

	// Duration is a time spent on writing.
	Duration time.Duration
}

// EventSinkDropped is emitted when records are thrown away because sink
// is overloaded.
type EventSinkDropped struct {
	eventBase

	Count int
}

// EventReplayCacheSize is emitted periodically with a number of
// remembered nonces.
type EventReplayCacheSize struct {
	eventBase

	Current  int
	Expiring int
}

// NewEventRequestStart creates a new EventRequestStart event.
func NewEventRequestStart(streamID string, remoteIP net.IP, path string) EventRequestStart {
	return EventRequestStart{
		eventBase: eventBase{
			timestamp: time.Now(),
			streamID:  streamID,
		},
		RemoteIP: remoteIP,
		Path:     path,
	}
}

// NewEventRequestFinish creates a new EventRequestFinish event.
func NewEventRequestFinish(streamID string, status int, duration time.Duration) EventRequestFinish {
	return EventRequestFinish{
		eventBase: eventBase{
			timestamp: time.Now(),
			streamID:  streamID,
		},
		Status:   status,
		Duration: duration,
	}
}

// NewEventAuthenticated creates a new EventAuthenticated event.
func NewEventAuthenticated(streamID, name string) EventAuthenticated {
	return EventAuthenticated{
		eventBase: eventBase{
			timestamp: time.Now(),
			streamID:  streamID,
		},
		Name: name,
	}
}

// NewEventAuthRejected creates a new EventAuthRejected event. reason is
// reduced to the sentinel error.
func NewEventAuthRejected(streamID string, reason error) EventAuthRejected {
	if kind := AuthErrorKind(reason); kind != nil {
		reason = kind
	}

	return EventAuthRejected{
		eventBase: eventBase{
			timestamp: time.Now(),
			streamID:  streamID,
		},
		Reason: reason,
	}
}

// NewEventReplayAttack creates a new EventReplayAttack event.
func NewEventReplayAttack(streamID string) EventReplayAttack {
	return EventReplayAttack{
		eventBase: eventBase{
			timestamp: time.Now(),
			streamID:  streamID,
		},
	}
}

// NewEventIPBlocklisted creates a new EventIPBlocklisted event.
func NewEventIPBlocklisted(streamID string, remoteIP net.IP) EventIPBlocklisted {
	return EventIPBlocklisted{
		eventBase: eventBase{
			timestamp: time.Now(),
			streamID:  streamID,
		},
		RemoteIP:    remoteIP,
		IsBlockList: true,
	}
}

// NewEventIPAllowlisted creates a EventIPBlocklisted event with a mark
// that it is supposed to be for allow list.
func NewEventIPAllowlisted(streamID string, remoteIP net.IP) EventIPBlocklisted {
	return EventIPBlocklisted{
		eventBase: eventBase{
			timestamp: time.Now(),
			streamID:  streamID,
		},
		RemoteIP:    remoteIP,
		IsBlockList: false,
	}
}

// NewEventRateLimited creates a new EventRateLimited event.
func NewEventRateLimited(streamID string, remoteIP net.IP) EventRateLimited {
	return EventRateLimited{
		eventBase: eventBase{
			timestamp: time.Now(),
			streamID:  streamID,
		},
		RemoteIP: remoteIP,
	}
}

// NewEventSinkWrite creates a new EventSinkWrite event.
func NewEventSinkWrite(count int, failed bool, duration time.Duration) EventSinkWrite {
	return EventSinkWrite{
		eventBase: eventBase{
			timestamp: time.Now(),
		},
		Count:    count,
		Failed:   failed,
		Duration: duration,
	}
}

// NewEventSinkDropped creates a new EventSinkDropped event.
func NewEventSinkDropped(count int) EventSinkDropped {
	return EventSinkDropped{
		eventBase: eventBase{
			timestamp: time.Now(),
		},
		Count: count,
	}
}

// NewEventReplayCacheSize creates a new EventReplayCacheSize event.
func NewEventReplayCacheSize(current, expiring int) EventReplayCacheSize {
	return EventReplayCacheSize{
		eventBase: eventBase{
			timestamp: time.Now(),
		},
		Current:  current,
		Expiring: expiring,
	}
}
