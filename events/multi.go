package events

import (
	"sync"

	"github.com/influxgate/influxgate/gatelib"
)

type multiObserver struct {
	observers []Observer
}

func (m multiObserver) EventRequestStart(evt gatelib.EventRequestStart) {
	m.each(func(o Observer) { o.EventRequestStart(evt) })
}

func (m multiObserver) EventRequestFinish(evt gatelib.EventRequestFinish) {
	m.each(func(o Observer) { o.EventRequestFinish(evt) })
}

func (m multiObserver) EventAuthenticated(evt gatelib.EventAuthenticated) {
	m.each(func(o Observer) { o.EventAuthenticated(evt) })
}

func (m multiObserver) EventAuthRejected(evt gatelib.EventAuthRejected) {
	m.each(func(o Observer) { o.EventAuthRejected(evt) })
}

func (m multiObserver) EventReplayAttack(evt gatelib.EventReplayAttack) {
	m.each(func(o Observer) { o.EventReplayAttack(evt) })
}

func (m multiObserver) EventIPBlocklisted(evt gatelib.EventIPBlocklisted) {
	m.each(func(o Observer) { o.EventIPBlocklisted(evt) })
}

func (m multiObserver) EventRateLimited(evt gatelib.EventRateLimited) {
	m.each(func(o Observer) { o.EventRateLimited(evt) })
}

func (m multiObserver) EventSinkWrite(evt gatelib.EventSinkWrite) {
	m.each(func(o Observer) { o.EventSinkWrite(evt) })
}

func (m multiObserver) EventSinkDropped(evt gatelib.EventSinkDropped) {
	m.each(func(o Observer) { o.EventSinkDropped(evt) })
}

func (m multiObserver) EventReplayCacheSize(evt gatelib.EventReplayCacheSize) {
	m.each(func(o Observer) { o.EventReplayCacheSize(evt) })
}

func (m multiObserver) Shutdown() {
	for _, v := range m.observers {
		v.Shutdown()
	}
}

func (m multiObserver) each(callback func(Observer)) {
	wg := &sync.WaitGroup{}
	wg.Add(len(m.observers))

	for _, v := range m.observers {
		go func(obs Observer) {
			defer wg.Done()

			callback(obs)
		}(v)
	}

	wg.Wait()
}

func newMultiObserver(observers []ObserverFactory) Observer {
	rv := multiObserver{
		observers: make([]Observer, len(observers)),
	}

	for i, v := range observers {
		rv.observers[i] = v()
	}

	return rv
}
