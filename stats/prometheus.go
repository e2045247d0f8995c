package stats

import (
	"context"
	"net"
	"net/http"

	"github.com/influxgate/influxgate/events"
	"github.com/influxgate/influxgate/gatelib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type prometheusProcessor struct {
	requests map[string]*requestInfo
	factory  *PrometheusFactory
}

func (p prometheusProcessor) EventRequestStart(evt gatelib.EventRequestStart) {
	info := acquireRequestInfo()
	info.startTime = evt.Timestamp()
	info.tags[TagIPFamily] = getIPFamily(evt.RemoteIP)

	p.requests[evt.StreamID()] = info

	p.factory.metricRequestsInFlight.
		WithLabelValues(info.tags[TagIPFamily]).
		Inc()
}

func (p prometheusProcessor) EventRequestFinish(evt gatelib.EventRequestFinish) {
	info, ok := p.requests[evt.StreamID()]
	if !ok {
		return
	}

	defer func() {
		delete(p.requests, evt.StreamID())
		releaseRequestInfo(info)
	}()

	p.factory.metricRequestsInFlight.
		WithLabelValues(info.tags[TagIPFamily]).
		Dec()
	p.factory.metricRequests.
		WithLabelValues(getStatus(evt.Status)).
		Inc()
	p.factory.metricRequestDuration.Observe(evt.Duration.Seconds())
}

func (p prometheusProcessor) EventAuthenticated(evt gatelib.EventAuthenticated) {
	p.factory.metricAuthenticated.WithLabelValues(evt.Name).Inc()
}

func (p prometheusProcessor) EventAuthRejected(evt gatelib.EventAuthRejected) {
	p.factory.metricAuthRejected.WithLabelValues(getReason(evt.Reason)).Inc()
}

func (p prometheusProcessor) EventReplayAttack(_ gatelib.EventReplayAttack) {
	p.factory.metricReplayAttacks.Inc()
}

func (p prometheusProcessor) EventIPBlocklisted(evt gatelib.EventIPBlocklisted) {
	p.factory.metricIPBlocklisted.WithLabelValues(getIPList(evt.IsBlockList)).Inc()
}

func (p prometheusProcessor) EventRateLimited(_ gatelib.EventRateLimited) {
	p.factory.metricRateLimited.Inc()
}

func (p prometheusProcessor) EventSinkWrite(evt gatelib.EventSinkWrite) {
	p.factory.metricSinkRecords.
		WithLabelValues(getSinkResult(evt.Failed)).
		Add(float64(evt.Count))
	p.factory.metricSinkWriteDuration.Observe(evt.Duration.Seconds())
}

func (p prometheusProcessor) EventSinkDropped(evt gatelib.EventSinkDropped) {
	p.factory.metricSinkDropped.Add(float64(evt.Count))
}

func (p prometheusProcessor) EventReplayCacheSize(evt gatelib.EventReplayCacheSize) {
	p.factory.metricReplayCacheSize.
		WithLabelValues(TagGenerationCurrent).
		Set(float64(evt.Current))
	p.factory.metricReplayCacheSize.
		WithLabelValues(TagGenerationExpiring).
		Set(float64(evt.Expiring))
}

func (p prometheusProcessor) Shutdown() {
	for k, v := range p.requests {
		releaseRequestInfo(v)
		delete(p.requests, k)
	}
}

// PrometheusFactory is a factory of [events.Observer] which collect
// information in a format suitable for Prometheus.
//
// This factory can also serve on a given listener. In that case it starts HTTP
// server with a single endpoint - a Prometheus-compatible scrape output.
type PrometheusFactory struct {
	httpServer *http.Server
	registry   *prometheus.Registry

	metricRequestsInFlight *prometheus.GaugeVec
	metricReplayCacheSize  *prometheus.GaugeVec

	metricRequests      *prometheus.CounterVec
	metricAuthenticated *prometheus.CounterVec
	metricAuthRejected  *prometheus.CounterVec
	metricIPBlocklisted *prometheus.CounterVec
	metricSinkRecords   *prometheus.CounterVec

	metricReplayAttacks prometheus.Counter
	metricRateLimited   prometheus.Counter
	metricSinkDropped   prometheus.Counter

	metricRequestDuration   prometheus.Histogram
	metricSinkWriteDuration prometheus.Histogram

	metricBuildInfo *prometheus.GaugeVec
}

// Make builds a new observer.
func (p *PrometheusFactory) Make() events.Observer {
	return prometheusProcessor{
		requests: make(map[string]*requestInfo),
		factory:  p,
	}
}

// Serve starts an HTTP server on a given listener.
func (p *PrometheusFactory) Serve(listener net.Listener) error {
	return p.httpServer.Serve(listener) //nolint: wrapcheck
}

// Close stops a factory. Please pay attention that underlying listener
// is not closed.
func (p *PrometheusFactory) Close() error {
	return p.httpServer.Shutdown(context.Background()) //nolint: wrapcheck
}

// NewPrometheus builds an events.ObserverFactory which can serve HTTP
// endpoint with Prometheus scrape data.
func NewPrometheus(metricPrefix, httpPath, version string) *PrometheusFactory { //nolint: funlen
	registry := prometheus.NewPedanticRegistry()
	httpHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
	mux := http.NewServeMux()

	mux.Handle(httpPath, httpHandler)

	factory := &PrometheusFactory{
		httpServer: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: gatelib.DefaultReadHeaderTimeout,
		},
		registry: registry,

		metricRequestsInFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricPrefix,
			Name:      MetricRequestsInFlight,
			Help:      "A number of requests which are processed right now.",
		}, []string{TagIPFamily}),
		metricReplayCacheSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricPrefix,
			Name:      MetricReplayCacheSize,
			Help:      "A number of nonces remembered by anti-replay cache.",
		}, []string{TagGeneration}),

		metricRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricPrefix,
			Name:      MetricRequests,
			Help:      "A number of served requests by response status.",
		}, []string{TagStatus}),
		metricAuthenticated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricPrefix,
			Name:      MetricAuthenticated,
			Help:      "A number of accepted telemetry records by service name.",
		}, []string{TagName}),
		metricAuthRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricPrefix,
			Name:      MetricAuthRejected,
			Help:      "A number of rejected assertions by reason.",
		}, []string{TagReason}),
		metricIPBlocklisted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricPrefix,
			Name:      MetricIPBlocklisted,
			Help:      "A number of rejected requests due to ip blocklisting.",
		}, []string{TagIPList}),
		metricSinkRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricPrefix,
			Name:      MetricSinkRecords,
			Help:      "A number of records sent to the storage.",
		}, []string{TagSinkResult}),

		metricReplayAttacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricPrefix,
			Name:      MetricReplayAttacks,
			Help:      "A number of detected replay attacks.",
		}),
		metricRateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricPrefix,
			Name:      MetricRateLimited,
			Help:      "A number of requests rejected by rate limiter.",
		}),
		metricSinkDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricPrefix,
			Name:      MetricSinkDropped,
			Help:      "A number of records dropped because storage is overloaded.",
		}),

		metricRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricPrefix,
			Name:      MetricRequestDuration,
			Help:      "Time spent on serving a request.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		metricSinkWriteDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricPrefix,
			Name:      MetricSinkWriteDuration,
			Help:      "Time spent on writing a batch to the storage.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}),

		metricBuildInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricPrefix,
			Name:      "build_info",
			Help:      "Build information about influxgate.",
		}, []string{"version"}),
	}

	registry.MustRegister(factory.metricRequestsInFlight)
	registry.MustRegister(factory.metricReplayCacheSize)

	registry.MustRegister(factory.metricRequests)
	registry.MustRegister(factory.metricAuthenticated)
	registry.MustRegister(factory.metricAuthRejected)
	registry.MustRegister(factory.metricIPBlocklisted)
	registry.MustRegister(factory.metricSinkRecords)

	registry.MustRegister(factory.metricReplayAttacks)
	registry.MustRegister(factory.metricRateLimited)
	registry.MustRegister(factory.metricSinkDropped)

	registry.MustRegister(factory.metricRequestDuration)
	registry.MustRegister(factory.metricSinkWriteDuration)

	registry.MustRegister(factory.metricBuildInfo)
	factory.metricBuildInfo.WithLabelValues(version).Set(1)

	return factory
}
