package config

import (
	"fmt"
	"strings"
)

// DNSMode defines how a hostname of InfluxDB is resolved.
type DNSMode uint8

const (
	// DNSModePlain uses a system resolver.
	DNSModePlain DNSMode = iota + 1

	// DNSModeDoH uses DNS-over-HTTPS of the doh-ip server.
	DNSModeDoH
)

func (d DNSMode) String() string {
	switch d {
	case DNSModePlain:
		return "plain"
	case DNSModeDoH:
		return "doh"
	}

	return ""
}

type TypeDNSMode struct {
	Value DNSMode
}

func (t *TypeDNSMode) Set(value string) error {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "plain", "system":
		t.Value = DNSModePlain
	case "doh", "dns-over-https":
		t.Value = DNSModeDoH
	default:
		return fmt.Errorf("unknown dns mode %q, expected 'doh' or 'plain'", value)
	}

	return nil
}

func (t TypeDNSMode) Get(defaultValue DNSMode) DNSMode {
	if t.Value == 0 {
		return defaultValue
	}

	return t.Value
}

func (t *TypeDNSMode) UnmarshalText(data []byte) error {
	return t.Set(string(data))
}

func (t TypeDNSMode) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t TypeDNSMode) String() string {
	return t.Value.String()
}
