package network

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/miekg/dns"
)

const dohMaxResponseSize = 64 * 1024

// dohDNSResolver resolves names with DNS-over-HTTPS (RFC 8484, GET
// method).
type dohDNSResolver struct {
	dohServer  string
	httpClient *http.Client
	cache      *hostCache
}

func (d *dohDNSResolver) LookupA(hostname string) []string {
	return d.lookup(hostname, dns.TypeA)
}

func (d *dohDNSResolver) LookupAAAA(hostname string) []string {
	return d.lookup(hostname, dns.TypeAAAA)
}

func (d *dohDNSResolver) lookup(hostname string, qtype uint16) []string {
	key := dns.TypeToString[qtype] + ":" + hostname

	if cached := d.cache.Get(key); cached != nil {
		return cached
	}

	answer, err := d.query(hostname, qtype)
	if err != nil {
		return nil
	}

	ips := []string{}

	for _, rr := range answer {
		switch record := rr.(type) {
		case *dns.A:
			ips = append(ips, record.A.String())
		case *dns.AAAA:
			ips = append(ips, record.AAAA.String())
		}
	}

	if len(ips) > 0 {
		d.cache.Set(key, ips)
	}

	return ips
}

func (d *dohDNSResolver) query(hostname string, qtype uint16) ([]dns.RR, error) {
	msg := &dns.Msg{}
	msg.SetQuestion(dns.Fqdn(hostname), qtype)
	msg.RecursionDesired = true

	packed, err := msg.Pack()
	if err != nil {
		return nil, fmt.Errorf("cannot pack dns message: %w", err)
	}

	url := "https://" + d.dohServer + "/dns-query?dns=" +
		base64.RawURLEncoding.EncodeToString(packed)

	ctx, cancel := context.WithTimeout(context.Background(), DNSTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot build a request: %w", err)
	}

	req.Header.Set("Accept", "application/dns-message")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cannot send doh request: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("doh server responded with %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, dohMaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("cannot read doh response: %w", err)
	}

	response := dns.Msg{}
	if err := response.Unpack(body); err != nil {
		return nil, fmt.Errorf("cannot unpack dns response: %w", err)
	}

	return response.Answer, nil
}

func (d *dohDNSResolver) Stop() {
	d.cache.Stop()
}

func newDOHDNSResolver(hostname string, httpClient *http.Client) *dohDNSResolver {
	if ip := net.ParseIP(hostname); ip != nil && ip.To4() == nil {
		hostname = "[" + hostname + "]"
	}

	return &dohDNSResolver{
		dohServer:  hostname,
		httpClient: httpClient,
		cache:      newHostCacheWithCleanup(defaultDNSCacheSize, defaultDNSTTL),
	}
}
