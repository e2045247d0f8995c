package network

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"sync"
	"time"
)

type networkHTTPTransport struct {
	userAgent string
	next      http.RoundTripper
}

func (n networkHTTPTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", n.userAgent)

	return n.next.RoundTrip(req) //nolint: wrapcheck
}

// Network resolves names and dials to upstreams. It is used to build
// HTTP clients for InfluxDB.
type Network struct {
	dialer      Dialer
	httpTimeout time.Duration
	userAgent   string
	dns         dnsResolver
}

// Dial is the same as DialContext with a background context.
func (n *Network) Dial(protocol, address string) (net.Conn, error) {
	return n.DialContext(context.Background(), protocol, address)
}

// DialContext resolves a hostname and tries all its addresses in
// random order until one of them connects.
func (n *Network) DialContext(ctx context.Context, protocol, address string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return nil, fmt.Errorf("incorrect address %s: %w", address, err)
	}

	ips, err := n.dnsResolve(protocol, host)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve dns names: %w", err)
	}

	rand.Shuffle(len(ips), func(i, j int) {
		ips[i], ips[j] = ips[j], ips[i]
	})

	var conn net.Conn

	for _, v := range ips {
		conn, err = n.dialer.DialContext(ctx, protocol, net.JoinHostPort(v, port))
		if err == nil {
			return conn, nil
		}
	}

	return nil, fmt.Errorf("cannot dial to %s:%s: %w", protocol, address, err)
}

// MakeHTTPClient builds an HTTP client which dials with this network.
func (n *Network) MakeHTTPClient() *http.Client {
	return makeHTTPClient(n.userAgent, n.httpTimeout, n.DialContext)
}

// Stop releases background resources of DNS cache.
func (n *Network) Stop() {
	n.dns.Stop()
}

func (n *Network) dnsResolve(protocol, hostname string) ([]string, error) {
	if net.ParseIP(hostname) != nil {
		return []string{hostname}, nil
	}

	var (
		ipv4 []string
		ipv6 []string
	)

	wg := &sync.WaitGroup{}

	if protocol == "tcp" || protocol == "tcp4" {
		wg.Add(1)

		go func() {
			defer wg.Done()

			ipv4 = n.dns.LookupA(hostname)
		}()
	}

	if protocol == "tcp" || protocol == "tcp6" {
		wg.Add(1)

		go func() {
			defer wg.Done()

			ipv6 = n.dns.LookupAAAA(hostname)
		}()
	}

	wg.Wait()

	// Копия: срез из кеша потом перемешивается.
	ips := make([]string, 0, len(ipv4)+len(ipv6))
	ips = append(ips, ipv4...)
	ips = append(ips, ipv6...)

	if len(ips) == 0 {
		return nil, fmt.Errorf("cannot find any ips for %s:%s", protocol, hostname)
	}

	return ips, nil
}

// NewNetwork assembles a Network based on a dialer and given params.
//
// If dohHostname is empty, system resolver is used. Otherwise it should
// be an IP address of DNS-over-HTTPS server.
func NewNetwork(dialer Dialer,
	userAgent, dohHostname string,
	httpTimeout time.Duration,
) (*Network, error) {
	switch {
	case httpTimeout < 0:
		return nil, fmt.Errorf("timeout should be positive number %s", httpTimeout)
	case httpTimeout == 0:
		httpTimeout = DefaultHTTPTimeout
	}

	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	var resolver dnsResolver

	if dohHostname == "" {
		resolver = newPlainDNSResolver()
	} else {
		if net.ParseIP(dohHostname) == nil {
			return nil, fmt.Errorf("hostname %s should be IP address", dohHostname)
		}

		resolver = newDOHDNSResolver(dohHostname,
			makeHTTPClient(userAgent, DNSTimeout, dialer.DialContext))
	}

	return &Network{
		dialer:      dialer,
		httpTimeout: httpTimeout,
		userAgent:   userAgent,
		dns:         resolver,
	}, nil
}

func makeHTTPClient(userAgent string,
	timeout time.Duration,
	dialFunc func(ctx context.Context, network, address string) (net.Conn, error),
) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: networkHTTPTransport{
			userAgent: userAgent,
			next: &http.Transport{
				DialContext:         dialFunc,
				MaxIdleConnsPerHost: 16, //nolint: gomnd
				IdleConnTimeout:     time.Minute,
			},
		},
	}
}
