package network

import (
	"context"
	"net"
)

// plainDNSResolver uses system resolver.
type plainDNSResolver struct {
	cache    *hostCache
	resolver *net.Resolver
}

func (p *plainDNSResolver) LookupA(hostname string) []string {
	return p.lookup("a:"+hostname, hostname, "ip4")
}

func (p *plainDNSResolver) LookupAAAA(hostname string) []string {
	return p.lookup("aaaa:"+hostname, hostname, "ip6")
}

func (p *plainDNSResolver) lookup(key, hostname, family string) []string {
	if cached := p.cache.Get(key); cached != nil {
		return cached
	}

	ctx, cancel := context.WithTimeout(context.Background(), DNSTimeout)
	defer cancel()

	addrs, err := p.resolver.LookupIP(ctx, family, hostname)
	if err != nil {
		return nil
	}

	ips := make([]string, 0, len(addrs))

	for _, addr := range addrs {
		ips = append(ips, addr.String())
	}

	if len(ips) > 0 {
		p.cache.Set(key, ips)
	}

	return ips
}

func (p *plainDNSResolver) Stop() {
	p.cache.Stop()
}

func newPlainDNSResolver() *plainDNSResolver {
	return &plainDNSResolver{
		cache: newHostCacheWithCleanup(defaultDNSCacheSize, defaultDNSTTL),
		resolver: &net.Resolver{
			PreferGo: true,
		},
	}
}
