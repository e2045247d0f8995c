package testlib

import (
	"context"
	"sync"

	"github.com/influxgate/influxgate/gatelib"
)

// EventStreamRecorder remembers all events it has received.
type EventStreamRecorder struct {
	mutex  sync.Mutex
	events []gatelib.Event
}

func (e *EventStreamRecorder) Send(_ context.Context, evt gatelib.Event) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	e.events = append(e.events, evt)
}

func (e *EventStreamRecorder) Events() []gatelib.Event {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	return append([]gatelib.Event{}, e.events...)
}

// Filter returns recorded events of type T.
func Filter[T gatelib.Event](e *EventStreamRecorder) []T {
	rv := []T{}

	for _, evt := range e.Events() {
		if typed, ok := evt.(T); ok {
			rv = append(rv, typed)
		}
	}

	return rv
}
