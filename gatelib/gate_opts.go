package gatelib

import (
	"time"

	"golang.org/x/time/rate"
)

// GateOpts is a structure with settings to the HTTP gate.
//
// This is not required per se, but this is to shorten function
// signature and give an ability to conveniently provide default values.
type GateOpts struct {
	// Pipeline authenticates assertions.
	//
	// This is a mandatory setting.
	Pipeline *Pipeline

	// Sink accepts authenticated records.
	//
	// This is a mandatory setting.
	Sink TelemetrySink

	// IPBlocklist defines an instance of IP blocklist.
	//
	// This is a mandatory setting.
	IPBlocklist IPBlocklist

	// IPAllowlist defines a whitelist of IPs to allow to use the gate.
	//
	// This is a mandatory setting. Use a list which contains everything
	// if you do not need restrictions.
	IPAllowlist IPBlocklist

	// EventStream defines an instance of event stream.
	//
	// This ia a mandatory setting.
	EventStream EventStream

	// Logger defines an instance of the logger.
	//
	// This is a mandatory setting.
	Logger Logger

	// MaxBodySize limits a size of /update request body in bytes.
	//
	// This is an optional setting. Default is 64 KiB.
	MaxBodySize uint

	// ReadHeaderTimeout is a timeout to read request headers.
	//
	// This is an optional setting.
	ReadHeaderTimeout time.Duration

	// IdleTimeout is a timeout of keep-alive connections.
	//
	// This is an optional setting.
	IdleTimeout time.Duration

	// RateLimitPerSecond defines the maximum number of requests per
	// second per IP.
	//
	// This is an optional setting. 0 disables rate limiting.
	RateLimitPerSecond float64

	// RateLimitBurst defines the maximum burst size for rate limiting.
	//
	// This is an optional setting. Default: 20
	RateLimitBurst int

	// ReplayCacheReportInterval defines how often a size of the
	// anti-replay cache is sent to the event stream.
	//
	// This is an optional setting.
	ReplayCacheReportInterval time.Duration

	// Clock is a source of the current time for freshness checks.
	//
	// This is an optional setting. Default is time.Now.
	Clock func() time.Time
}

func (g GateOpts) valid() error {
	switch {
	case g.Pipeline == nil:
		return ErrPipelineIsNotDefined
	case g.Sink == nil:
		return ErrSinkIsNotDefined
	case g.IPBlocklist == nil:
		return ErrIPBlocklistIsNotDefined
	case g.IPAllowlist == nil:
		return ErrIPAllowlistIsNotDefined
	case g.EventStream == nil:
		return ErrEventStreamIsNotDefined
	case g.Logger == nil:
		return ErrLoggerIsNotDefined
	}

	return nil
}

func (g GateOpts) getMaxBodySize() int64 {
	if g.MaxBodySize == 0 {
		return DefaultMaxBodySize
	}

	return int64(g.MaxBodySize)
}

func (g GateOpts) getReadHeaderTimeout() time.Duration {
	if g.ReadHeaderTimeout == 0 {
		return DefaultReadHeaderTimeout
	}

	return g.ReadHeaderTimeout
}

func (g GateOpts) getIdleTimeout() time.Duration {
	if g.IdleTimeout == 0 {
		return DefaultIdleTimeout
	}

	return g.IdleTimeout
}

func (g GateOpts) getRateLimitPerSecond() rate.Limit {
	return rate.Limit(g.RateLimitPerSecond)
}

func (g GateOpts) getRateLimitBurst() int {
	if g.RateLimitBurst == 0 {
		return DefaultRateLimitBurst
	}

	return g.RateLimitBurst
}

func (g GateOpts) getReplayCacheReportInterval() time.Duration {
	if g.ReplayCacheReportInterval == 0 {
		return DefaultReplayCacheReportInterval
	}

	return g.ReplayCacheReportInterval
}

func (g GateOpts) getClock() func() time.Time {
	if g.Clock == nil {
		return time.Now
	}

	return g.Clock
}

func (g GateOpts) getLogger(name string) Logger {
	return g.Logger.Named(name)
}
