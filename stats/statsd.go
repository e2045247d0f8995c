package stats

import (
	"fmt"
	"strings"

	"github.com/influxgate/influxgate/events"
	"github.com/influxgate/influxgate/gatelib"
	statsd "github.com/smira/go-statsd"
)

type statsdProcessor struct {
	requests map[string]*requestInfo
	client   *statsd.Client
}

func (s statsdProcessor) EventRequestStart(evt gatelib.EventRequestStart) {
	info := acquireRequestInfo()
	info.startTime = evt.Timestamp()
	info.tags[TagIPFamily] = getIPFamily(evt.RemoteIP)

	s.requests[evt.StreamID()] = info

	s.client.GaugeDelta(MetricRequestsInFlight, 1, info.T(TagIPFamily))
}

func (s statsdProcessor) EventRequestFinish(evt gatelib.EventRequestFinish) {
	info, ok := s.requests[evt.StreamID()]
	if !ok {
		return
	}

	defer func() {
		delete(s.requests, evt.StreamID())
		releaseRequestInfo(info)
	}()

	s.client.GaugeDelta(MetricRequestsInFlight, -1, info.T(TagIPFamily))
	s.client.Incr(MetricRequests, 1, statsd.StringTag(TagStatus, getStatus(evt.Status)))
	s.client.PrecisionTiming(MetricRequestDuration, evt.Duration)
}

func (s statsdProcessor) EventAuthenticated(evt gatelib.EventAuthenticated) {
	s.client.Incr(MetricAuthenticated, 1, statsd.StringTag(TagName, evt.Name))
}

func (s statsdProcessor) EventAuthRejected(evt gatelib.EventAuthRejected) {
	s.client.Incr(MetricAuthRejected, 1, statsd.StringTag(TagReason, getReason(evt.Reason)))
}

func (s statsdProcessor) EventReplayAttack(_ gatelib.EventReplayAttack) {
	s.client.Incr(MetricReplayAttacks, 1)
}

func (s statsdProcessor) EventIPBlocklisted(evt gatelib.EventIPBlocklisted) {
	s.client.Incr(MetricIPBlocklisted, 1, statsd.StringTag(TagIPList, getIPList(evt.IsBlockList)))
}

func (s statsdProcessor) EventRateLimited(_ gatelib.EventRateLimited) {
	s.client.Incr(MetricRateLimited, 1)
}

func (s statsdProcessor) EventSinkWrite(evt gatelib.EventSinkWrite) {
	s.client.Incr(MetricSinkRecords,
		int64(evt.Count),
		statsd.StringTag(TagSinkResult, getSinkResult(evt.Failed)))
	s.client.PrecisionTiming(MetricSinkWriteDuration, evt.Duration)
}

func (s statsdProcessor) EventSinkDropped(evt gatelib.EventSinkDropped) {
	s.client.Incr(MetricSinkDropped, int64(evt.Count))
}

func (s statsdProcessor) EventReplayCacheSize(evt gatelib.EventReplayCacheSize) {
	s.client.Gauge(MetricReplayCacheSize,
		int64(evt.Current),
		statsd.StringTag(TagGeneration, TagGenerationCurrent))
	s.client.Gauge(MetricReplayCacheSize,
		int64(evt.Expiring),
		statsd.StringTag(TagGeneration, TagGenerationExpiring))
}

func (s statsdProcessor) Shutdown() {
	for k, v := range s.requests {
		s.client.GaugeDelta(MetricRequestsInFlight, -1, v.T(TagIPFamily))
		releaseRequestInfo(v)
		delete(s.requests, k)
	}
}

// StatsdFactory is a factory of [events.Observer] which dumps
// information to statsd.
//
// Please pay attention that the client sends data in UDP packets and
// never blocks a caller.
type StatsdFactory struct {
	client *statsd.Client
}

// Close stops sending requests to statsd.
func (s StatsdFactory) Close() error {
	return s.client.Close() //nolint: wrapcheck
}

// Make build a new observer.
func (s StatsdFactory) Make() events.Observer {
	return statsdProcessor{
		client:   s.client,
		requests: make(map[string]*requestInfo),
	}
}

// NewStatsd builds an events.ObserverFactory that sends events to
// statsd.
//
// Valid tagFormats are 'datadog', 'influxdb' and 'graphite'.
func NewStatsd(address, metricPrefix, tagFormat string, logger gatelib.Logger) (StatsdFactory, error) {
	options := []statsd.Option{
		statsd.MetricPrefix(metricPrefix),
		statsd.Logger(logger.Named("statsd")),
	}

	switch strings.ToLower(tagFormat) {
	case "datadog":
		options = append(options, statsd.TagStyle(statsd.TagFormatDatadog))
	case "influxdb":
		options = append(options, statsd.TagStyle(statsd.TagFormatInfluxDB))
	case "graphite":
		options = append(options, statsd.TagStyle(statsd.TagFormatGraphite))
	default:
		return StatsdFactory{}, fmt.Errorf("unknown tag format %s", tagFormat)
	}

	return StatsdFactory{
		client: statsd.NewClient(address, options...),
	}, nil
}
