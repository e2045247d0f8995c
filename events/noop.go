package events

import (
	"context"

	"github.com/influxgate/influxgate/gatelib"
)

type noop struct{}

func (n noop) Send(_ context.Context, _ gatelib.Event) {}

// NewNoopStream creates a stream which discards all events.
func NewNoopStream() gatelib.EventStream {
	return noop{}
}

type noopObserver struct{}

func (n noopObserver) EventRequestStart(_ gatelib.EventRequestStart) {}
func (n noopObserver) EventRequestFinish(_ gatelib.EventRequestFinish) {}
func (n noopObserver) EventAuthenticated(_ gatelib.EventAuthenticated) {}
func (n noopObserver) EventAuthRejected(_ gatelib.EventAuthRejected) {}
func (n noopObserver) EventReplayAttack(_ gatelib.EventReplayAttack) {}
func (n noopObserver) EventIPBlocklisted(_ gatelib.EventIPBlocklisted) {}
func (n noopObserver) EventRateLimited(_ gatelib.EventRateLimited) {}
func (n noopObserver) EventSinkWrite(_ gatelib.EventSinkWrite) {}
func (n noopObserver) EventSinkDropped(_ gatelib.EventSinkDropped) {}
func (n noopObserver) EventReplayCacheSize(_ gatelib.EventReplayCacheSize) {}
func (n noopObserver) Shutdown() {}

// NewNoopObserver creates an observer which does nothing.
func NewNoopObserver() Observer {
	return noopObserver{}
}
