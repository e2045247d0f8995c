package cli

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/influxgate/influxgate/antireplay"
	"github.com/influxgate/influxgate/events"
	"github.com/influxgate/influxgate/gatelib"
	"github.com/influxgate/influxgate/internal/config"
	"github.com/influxgate/influxgate/internal/utils"
	"github.com/influxgate/influxgate/ipblocklist"
	"github.com/influxgate/influxgate/logger"
	"github.com/influxgate/influxgate/network"
	"github.com/influxgate/influxgate/sink"
	"github.com/influxgate/influxgate/stats"
	"github.com/rs/zerolog"
)

// closers are called in reverse order on shutdown.
type closers []func()

func (c *closers) add(fn func()) {
	*c = append(*c, fn)
}

func (c closers) close() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

func makeLogger(conf *config.Config) gatelib.Logger {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	if conf.Debug.Get(false) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	baseLogger := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Logger()

	return logger.NewZeroLogger(baseLogger)
}

func makeIPList(conf config.ListConfig, allowlist bool) (gatelib.IPBlocklist, error) {
	if !conf.Enabled.Get(false) {
		if allowlist {
			return ipblocklist.NewAllowAll(), nil
		}

		return ipblocklist.NewNoop(), nil
	}

	list, err := ipblocklist.NewCIDRFromFiles(conf.Strings(), conf.Paths())
	if err != nil {
		return nil, fmt.Errorf("cannot build ip list: %w", err)
	}

	return list, nil
}

func makeAntiReplayCache(conf *config.Config) *antireplay.CacheWithMetrics {
	antiReplay := conf.Defense.AntiReplay

	if antiReplay.Kind.Get(config.TypeReplayKindGenerational) == config.TypeReplayKindStableBloom {
		return antireplay.WithMetrics(antireplay.NewStableBloomFilter(
			antiReplay.MaxSize.Get(antireplay.DefaultStableBloomFilterMaxSize),
			antiReplay.ErrorRate.Get(antireplay.DefaultStableBloomFilterErrorRate)))
	}

	window := antiReplay.Window.Get(conf.MaxValidity.Get(gatelib.DefaultMaxValidity))

	return antireplay.WithMetrics(antireplay.NewGenerational(window,
		antireplay.WithRotationPolicy(antiReplay.Rotation.Get(antireplay.RotateOnSchedule)),
		antireplay.WithDuplicatePolicy(antiReplay.Duplicates.Get(antireplay.RejectSeen))))
}

func makeEventStream(conf *config.Config, log gatelib.Logger, version string, toClose *closers) (gatelib.EventStream, error) { //nolint: lll
	factories := make([]events.ObserverFactory, 0, 2) //nolint: gomnd

	if conf.Stats.StatsD.Enabled.Get(false) {
		statsdFactory, err := stats.NewStatsd(
			conf.Stats.StatsD.Address.Get(""),
			conf.Stats.StatsD.MetricPrefix.Get(stats.DefaultStatsdMetricPrefix),
			conf.Stats.StatsD.TagFormat.Get(stats.DefaultStatsdTagFormat),
			log)
		if err != nil {
			return nil, fmt.Errorf("cannot build statsd observer: %w", err)
		}

		toClose.add(func() { statsdFactory.Close() }) //nolint: errcheck

		factories = append(factories, statsdFactory.Make)
	}

	if conf.Stats.Prometheus.Enabled.Get(false) {
		prometheus := stats.NewPrometheus(
			conf.Stats.Prometheus.MetricPrefix.Get(stats.DefaultMetricPrefix),
			conf.Stats.Prometheus.HTTPPath.Get("/"),
			version)

		listener, err := net.Listen("tcp", conf.Stats.Prometheus.BindTo.Get(""))
		if err != nil {
			return nil, fmt.Errorf("cannot start a listener for prometheus: %w", err)
		}

		go func() {
			if err := prometheus.Serve(listener); err != nil {
				log.DebugError("prometheus endpoint has stopped", err)
			}
		}()

		toClose.add(func() {
			prometheus.Close() //nolint: errcheck
			listener.Close()
		})

		factories = append(factories, prometheus.Make)
	}

	if len(factories) == 0 {
		return events.NewNoopStream(), nil
	}

	stream := events.NewEventStream(factories)

	toClose.add(stream.Shutdown)

	return stream, nil
}

func makeNetwork(conf *config.Config, version string) (*network.Network, error) {
	baseDialer, err := network.NewDefaultDialer(conf.Network.Timeout.TCP.Get(network.DefaultTimeout))
	if err != nil {
		return nil, fmt.Errorf("cannot build a default dialer: %w", err)
	}

	dialer := network.NewCircuitBreakerDialer(baseDialer,
		uint32(conf.Network.CircuitBreaker.Threshold.Get(network.DefaultCircuitBreakerThreshold)),
		conf.Network.CircuitBreaker.Cooldown.Get(network.DefaultCircuitBreakerCooldown))

	dohHostname := ""
	if conf.Network.DNSMode.Get(config.DNSModePlain) == config.DNSModeDoH {
		dohHostname = conf.Network.DOHIP.Get(net.ParseIP(network.DefaultDOHHostname)).String()
	}

	return network.NewNetwork(dialer, //nolint: wrapcheck
		network.DefaultUserAgent+"/"+version,
		dohHostname,
		conf.Network.Timeout.HTTP.Get(network.DefaultHTTPTimeout))
}

func makeSink(conf *config.Config,
	log gatelib.Logger,
	eventStream gatelib.EventStream,
	version string,
	toClose *closers,
) (gatelib.TelemetrySink, error) {
	influxConf := conf.Sink.Influx

	if !influxConf.Enabled.Get(false) {
		log.Warning("influx sink is disabled, records are only logged")

		return sink.NewLog(log), nil
	}

	ntw, err := makeNetwork(conf, version)
	if err != nil {
		return nil, fmt.Errorf("cannot build network: %w", err)
	}

	toClose.add(ntw.Stop)

	writer, err := sink.NewInflux(sink.InfluxOpts{
		URL:             influxConf.URL.Get(""),
		Database:        influxConf.Database,
		RetentionPolicy: influxConf.RetentionPolicy,
		Username:        influxConf.Username,
		Password:        influxConf.Password,
		HTTPClient:      ntw.MakeHTTPClient(),
		Logger:          log,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot build influx writer: %w", err)
	}

	async, err := sink.NewAsync(sink.AsyncOpts{
		Writer:        writer,
		EventStream:   eventStream,
		Logger:        log,
		BatchSize:     influxConf.BatchSize.Get(sink.DefaultBatchSize),
		FlushInterval: influxConf.FlushInterval.Get(sink.DefaultFlushInterval),
		Concurrency:   influxConf.Concurrency.Get(sink.DefaultConcurrency),
		WriteTimeout:  influxConf.Timeout.Get(sink.DefaultWriteTimeout),
	})
	if err != nil {
		return nil, fmt.Errorf("cannot build async sink: %w", err)
	}

	toClose.add(async.Shutdown)

	return async, nil
}

func runGate(conf *config.Config, version string) error { //nolint: funlen
	log := makeLogger(conf)

	log.BindJSON("configuration", conf.String()).Debug("configuration")

	toClose := closers{}
	defer toClose.close()

	eventStream, err := makeEventStream(conf, log, version, &toClose)
	if err != nil {
		return fmt.Errorf("cannot build event stream: %w", err)
	}

	replayCache := makeAntiReplayCache(conf)

	pipeline, err := gatelib.NewPipeline(gatelib.PipelineOpts{
		Key:               conf.Secret.Get(gatelib.SecretKey{}),
		Algorithm:         conf.MACAlgorithm.Get(gatelib.DefaultMACAlgorithm),
		MaxValidity:       conf.MaxValidity.Get(gatelib.DefaultMaxValidity),
		ReplayCache:       replayCache,
		SplitLongValidity: conf.Defense.Freshness.ReportLongValidity.Get(false),
	})
	if err != nil {
		return fmt.Errorf("cannot build authentication pipeline: %w", err)
	}

	blocklist, err := makeIPList(conf.Defense.Blocklist, false)
	if err != nil {
		return fmt.Errorf("cannot build ip blocklist: %w", err)
	}

	allowlist, err := makeIPList(conf.Defense.Allowlist, true)
	if err != nil {
		return fmt.Errorf("cannot build ip allowlist: %w", err)
	}

	telemetrySink, err := makeSink(conf, log, eventStream, version, &toClose)
	if err != nil {
		return fmt.Errorf("cannot build sink: %w", err)
	}

	rateLimitPerSecond := 0.0
	if conf.Defense.RateLimit.Enabled.Get(false) {
		rateLimitPerSecond = conf.Defense.RateLimit.PerSecond.Get(0)
	}

	gate, err := gatelib.NewGate(gatelib.GateOpts{
		Pipeline:           pipeline,
		Sink:               telemetrySink,
		IPBlocklist:        blocklist,
		IPAllowlist:        allowlist,
		EventStream:        eventStream,
		Logger:             log,
		MaxBodySize:        conf.MaxBodySize.Get(gatelib.DefaultMaxBodySize),
		IdleTimeout:        conf.Network.Timeout.Idle.Get(gatelib.DefaultIdleTimeout),
		RateLimitPerSecond: rateLimitPerSecond,
		RateLimitBurst:     int(conf.Defense.RateLimit.Burst.Get(gatelib.DefaultRateLimitBurst)),
	})
	if err != nil {
		return fmt.Errorf("cannot build gate: %w", err)
	}

	listener, err := utils.NewListener(conf.BindTo.Get(""), conf.Network.TCPFastOpen.Get(false), log)
	if err != nil {
		return fmt.Errorf("cannot start gate: %w", err)
	}

	log.BindStr("bind_to", listener.Addr().String()).
		BindStr("tfo", fmt.Sprint(listener.IsTFOEnabled())).
		Info("gate has started")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	serveErr := make(chan error, 1)

	go func() {
		serveErr <- gate.Serve(listener)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			gate.Shutdown()

			return err //nolint: wrapcheck
		}
	}

	// Shutdown ждёт запросы в полёте, и только потом закрываются
	// sink и event stream.
	gate.Shutdown()

	metrics := replayCache.GetMetrics()

	log.BindInt("checks", int(metrics.TotalChecks)).
		BindInt("replays", int(metrics.ReplayDetected)).
		Info("gate has stopped")

	return nil
}
