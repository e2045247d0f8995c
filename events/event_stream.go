package events

import (
	"context"
	"math/rand"
	"runtime"
	"sync/atomic"

	"github.com/OneOfOne/xxhash"
	"github.com/influxgate/influxgate/gatelib"
)

// EventStream is a default implementation of the [gatelib.EventStream]
// interface.
//
// EventStream manages a set of goroutines, observers. Main
// responsibility of the event stream is to route an event to relevant
// observer based on some hash so each observer will have all events
// which belong to some request id.
//
// Thus, EventStream can spawn many observers.
type EventStream struct {
	ctx       context.Context
	ctxCancel context.CancelFunc
	chans     []chan gatelib.Event

	// Указатель: EventStream передаётся по значению, а atomic.Uint64
	// копировать нельзя.
	dropped *atomic.Uint64
}

// Send delivers event to observer.
//
// Periodic gauges (EventReplayCacheSize) are dropped if observer is
// busy, the next report brings a fresh value anyway. Other events are
// delivered in blocking mode.
func (e EventStream) Send(ctx context.Context, evt gatelib.Event) {
	// после Shutdown select может выбрать ещё свободный канал
	if e.ctx.Err() != nil {
		return
	}

	var chanNo uint32

	if streamID := evt.StreamID(); streamID != "" {
		chanNo = xxhash.ChecksumString32(streamID)
	} else {
		chanNo = rand.Uint32() //nolint: gosec
	}

	ch := e.chans[int(chanNo)%len(e.chans)]

	if _, isGauge := evt.(gatelib.EventReplayCacheSize); isGauge {
		select {
		case <-ctx.Done():
		case <-e.ctx.Done():
		case ch <- evt:
		default:
			e.dropped.Add(1)
		}

		return
	}

	select {
	case <-ctx.Done():
	case <-e.ctx.Done():
	case ch <- evt:
	}
}

// Dropped returns a number of events which were thrown away.
func (e EventStream) Dropped() uint64 {
	return e.dropped.Load()
}

// Shutdown stops an event stream pipeline.
func (e EventStream) Shutdown() {
	e.ctxCancel()
}

// NewEventStream builds a new default event stream.
//
// If you give an empty array of observers, then NoopObserver is going
// to be used. If you give many observers, then they will process a
// message concurrently.
func NewEventStream(observerFactories []ObserverFactory) EventStream {
	if len(observerFactories) == 0 {
		observerFactories = append(observerFactories, NewNoopObserver)
	}

	ctx, cancel := context.WithCancel(context.Background())
	rv := EventStream{
		ctx:       ctx,
		ctxCancel: cancel,
		chans:     make([]chan gatelib.Event, runtime.NumCPU()),
		dropped:   &atomic.Uint64{},
	}

	for i := 0; i < runtime.NumCPU(); i++ {
		rv.chans[i] = make(chan gatelib.Event, DefaultChannelSize)

		if len(observerFactories) == 1 {
			go eventStreamProcessor(ctx, rv.chans[i], observerFactories[0]())
		} else {
			go eventStreamProcessor(ctx, rv.chans[i], newMultiObserver(observerFactories))
		}
	}

	return rv
}

func eventStreamProcessor(ctx context.Context, eventChan <-chan gatelib.Event, observer Observer) { //nolint: cyclop
	defer observer.Shutdown()

	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-eventChan:
			switch typedEvt := evt.(type) {
			case gatelib.EventRequestStart:
				observer.EventRequestStart(typedEvt)
			case gatelib.EventRequestFinish:
				observer.EventRequestFinish(typedEvt)
			case gatelib.EventAuthenticated:
				observer.EventAuthenticated(typedEvt)
			case gatelib.EventAuthRejected:
				observer.EventAuthRejected(typedEvt)
			case gatelib.EventReplayAttack:
				observer.EventReplayAttack(typedEvt)
			case gatelib.EventIPBlocklisted:
				observer.EventIPBlocklisted(typedEvt)
			case gatelib.EventRateLimited:
				observer.EventRateLimited(typedEvt)
			case gatelib.EventSinkWrite:
				observer.EventSinkWrite(typedEvt)
			case gatelib.EventSinkDropped:
				observer.EventSinkDropped(typedEvt)
			case gatelib.EventReplayCacheSize:
				observer.EventReplayCacheSize(typedEvt)
			}
		}
	}
}

var _ gatelib.EventStream = EventStream{}
