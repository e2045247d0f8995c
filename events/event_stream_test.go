package events_test

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/influxgate/influxgate/events"
	"github.com/influxgate/influxgate/gatelib"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ObserverMock struct {
	mock.Mock

	mutex sync.Mutex
}

func (o *ObserverMock) record(method string, args ...interface{}) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.MethodCalled(method, args...)
}

func (o *ObserverMock) EventRequestStart(evt gatelib.EventRequestStart) { o.record("EventRequestStart", evt) }
func (o *ObserverMock) EventRequestFinish(evt gatelib.EventRequestFinish) { o.record("EventRequestFinish", evt) }
func (o *ObserverMock) EventAuthenticated(evt gatelib.EventAuthenticated) { o.record("EventAuthenticated", evt) }
func (o *ObserverMock) EventAuthRejected(evt gatelib.EventAuthRejected) { o.record("EventAuthRejected", evt) }
func (o *ObserverMock) EventReplayAttack(evt gatelib.EventReplayAttack) { o.record("EventReplayAttack", evt) }
func (o *ObserverMock) EventIPBlocklisted(evt gatelib.EventIPBlocklisted) { o.record("EventIPBlocklisted", evt) }
func (o *ObserverMock) EventRateLimited(evt gatelib.EventRateLimited) { o.record("EventRateLimited", evt) }
func (o *ObserverMock) EventSinkWrite(evt gatelib.EventSinkWrite) { o.record("EventSinkWrite", evt) }
func (o *ObserverMock) EventSinkDropped(evt gatelib.EventSinkDropped) { o.record("EventSinkDropped", evt) }
func (o *ObserverMock) EventReplayCacheSize(evt gatelib.EventReplayCacheSize) { o.record("EventReplayCacheSize", evt) }
func (o *ObserverMock) Shutdown() { o.record("Shutdown") }

type EventStreamTestSuite struct {
	suite.Suite

	ctx       context.Context
	ctxCancel context.CancelFunc
	observer1 *ObserverMock
	observer2 *ObserverMock
	stream    events.EventStream
}

func (suite *EventStreamTestSuite) SetupTest() {
	suite.ctx, suite.ctxCancel = context.WithCancel(context.Background())
	suite.observer1 = &ObserverMock{}
	suite.observer2 = &ObserverMock{}

	suite.observer1.On("Shutdown").Maybe()
	suite.observer2.On("Shutdown").Maybe()

	factories := []events.ObserverFactory{
		func() events.Observer { return suite.observer1 },
		func() events.Observer { return suite.observer2 },
	}

	suite.stream = events.NewEventStream(factories)
}

func (suite *EventStreamTestSuite) TearDownTest() {
	suite.stream.Shutdown()
	suite.ctxCancel()
}

func (suite *EventStreamTestSuite) TestDeliveredToAllObservers() {
	testData := []gatelib.Event{
		gatelib.NewEventRequestStart("req", net.ParseIP("10.0.0.1"), "/update"),
		gatelib.NewEventAuthenticated("req", "billing"),
		gatelib.NewEventAuthRejected("req", errors.New("unknown")),
		gatelib.NewEventReplayAttack("req"),
		gatelib.NewEventIPBlocklisted("req", net.ParseIP("10.0.0.1")),
		gatelib.NewEventRateLimited("req", net.ParseIP("10.0.0.1")),
		gatelib.NewEventRequestFinish("req", 200, time.Millisecond),
		gatelib.NewEventSinkWrite(10, false, time.Millisecond),
		gatelib.NewEventSinkDropped(10),
	}

	for _, evt := range testData {
		suite.observer1.
			On(eventMethod(evt), evt).
			Once()
		suite.observer2.
			On(eventMethod(evt), evt).
			Once()

		suite.stream.Send(suite.ctx, evt)
	}

	suite.Eventually(func() bool {
		suite.observer1.mutex.Lock()
		defer suite.observer1.mutex.Unlock()

		suite.observer2.mutex.Lock()
		defer suite.observer2.mutex.Unlock()

		return len(suite.observer1.Calls) == len(testData) &&
			len(suite.observer2.Calls) == len(testData)
	}, time.Second, 10*time.Millisecond)
}

func (suite *EventStreamTestSuite) TestOrderWithinRequest() {
	start := gatelib.NewEventRequestStart("ordered", net.ParseIP("10.0.0.1"), "/update")
	finish := gatelib.NewEventRequestFinish("ordered", 401, time.Millisecond)

	suite.observer1.On("EventRequestStart", start).Once()
	suite.observer1.On("EventRequestFinish", finish).Once()
	suite.observer2.On("EventRequestStart", start).Once()
	suite.observer2.On("EventRequestFinish", finish).Once()

	suite.stream.Send(suite.ctx, start)
	suite.stream.Send(suite.ctx, finish)

	suite.Eventually(func() bool {
		suite.observer1.mutex.Lock()
		defer suite.observer1.mutex.Unlock()

		calls := []string{}

		for _, v := range suite.observer1.Calls {
			calls = append(calls, v.Method)
		}

		return len(calls) == 2 && calls[0] == "EventRequestStart" && calls[1] == "EventRequestFinish"
	}, time.Second, 10*time.Millisecond)
}

func (suite *EventStreamTestSuite) TestSendAfterShutdown() {
	suite.stream.Shutdown()

	suite.NotPanics(func() {
		for i := 0; i < 1000; i++ {
			suite.stream.Send(suite.ctx, gatelib.NewEventSinkDropped(i))
		}
	})

	time.Sleep(20 * time.Millisecond)

	for _, observer := range []*ObserverMock{suite.observer1, suite.observer2} {
		observer.mutex.Lock()

		for _, v := range observer.Calls {
			suite.Equal("Shutdown", v.Method)
		}

		observer.mutex.Unlock()
	}
}

func eventMethod(evt gatelib.Event) string {
	switch evt.(type) {
	case gatelib.EventRequestStart:
		return "EventRequestStart"
	case gatelib.EventRequestFinish:
		return "EventRequestFinish"
	case gatelib.EventAuthenticated:
		return "EventAuthenticated"
	case gatelib.EventAuthRejected:
		return "EventAuthRejected"
	case gatelib.EventReplayAttack:
		return "EventReplayAttack"
	case gatelib.EventIPBlocklisted:
		return "EventIPBlocklisted"
	case gatelib.EventRateLimited:
		return "EventRateLimited"
	case gatelib.EventSinkWrite:
		return "EventSinkWrite"
	case gatelib.EventSinkDropped:
		return "EventSinkDropped"
	case gatelib.EventReplayCacheSize:
		return "EventReplayCacheSize"
	}

	return ""
}

func TestEventStream(t *testing.T) {
	t.Parallel()
	suite.Run(t, &EventStreamTestSuite{})
}
