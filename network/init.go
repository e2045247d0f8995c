// Package network contains a default implementation of the network
// for influxgate: dialers and HTTP clients which are used to reach
// InfluxDB.
//
// A dialer tunes TCP sockets and is guarded by a circuit breaker:
// after several consecutive failures upstream gets a cooldown period
// and writes fail fast instead of piling up.
//
// Names are resolved either with system resolver or with
// DNS-over-HTTPS. In both cases results are cached.
package network

import (
	"context"
	"errors"
	"net"
	"time"
)

const (
	// DefaultTimeout is a default timeout for establishing TCP
	// connection.
	DefaultTimeout = 10 * time.Second

	// DefaultHTTPTimeout is a default timeout for HTTP requests.
	DefaultHTTPTimeout = 10 * time.Second

	// DefaultTCPKeepAlivePeriod defines a time period between 2
	// consecutive keep alive probes.
	DefaultTCPKeepAlivePeriod = 10 * time.Second

	// DefaultCircuitBreakerThreshold is a number of consecutive
	// failures after which upstream goes to cooldown.
	DefaultCircuitBreakerThreshold = 5

	// DefaultCircuitBreakerCooldown is a duration of the cooldown.
	DefaultCircuitBreakerCooldown = 30 * time.Second

	// DefaultDOHHostname is a default IP address of DNS-over-HTTPS
	// server.
	DefaultDOHHostname = "9.9.9.9"

	// DNSTimeout is a timeout of a single DNS query.
	DNSTimeout = 5 * time.Second

	// DefaultUserAgent is sent with each HTTP request.
	DefaultUserAgent = "influxgate"

	defaultDNSCacheSize    = 256
	defaultDNSTTL          = 5 * time.Minute
	defaultDNSCacheCleanup = 5 * time.Minute
)

// ErrCircuitBreakerOpened is returned if upstream is in cooldown after
// too many failures.
var ErrCircuitBreakerOpened = errors.New("circuit breaker is opened")

// Dialer defines an interface which is required to bootstrap a network
// instance.
type Dialer interface {
	Dial(network, address string) (net.Conn, error)
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

type dnsResolver interface {
	LookupA(hostname string) []string
	LookupAAAA(hostname string) []string
	Stop()
}
