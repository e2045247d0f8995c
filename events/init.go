// Package events has a default implementation of EventStream for
// gatelib.
//
// Please see documentation for [gatelib.EventStream] interface to get
// an idea of such an abstraction. This package has implementations for
// the default event stream and observers which consume events.
//
// Events of a single request are always delivered to the same observer
// instance, in order. So observers may keep per-request state without
// locks.
package events

import "github.com/influxgate/influxgate/gatelib"

// DefaultChannelSize is a buffer size of the channel between event
// stream and a single observer.
const DefaultChannelSize = 64

// Observer is an instance that listens for the incoming events.
//
// An observer is created by [ObserverFactory] for each goroutine of
// the event stream, so it is never used concurrently.
type Observer interface {
	EventRequestStart(gatelib.EventRequestStart)
	EventRequestFinish(gatelib.EventRequestFinish)
	EventAuthenticated(gatelib.EventAuthenticated)
	EventAuthRejected(gatelib.EventAuthRejected)
	EventReplayAttack(gatelib.EventReplayAttack)
	EventIPBlocklisted(gatelib.EventIPBlocklisted)
	EventRateLimited(gatelib.EventRateLimited)
	EventSinkWrite(gatelib.EventSinkWrite)
	EventSinkDropped(gatelib.EventSinkDropped)
	EventReplayCacheSize(gatelib.EventReplayCacheSize)

	Shutdown()
}

// ObserverFactory creates a new instance of the observer.
type ObserverFactory func() Observer
