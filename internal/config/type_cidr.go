package config

import (
	"fmt"
	"net"
	"strings"
)

// TypeCIDR is a network in CIDR notation or a single IP address.
type TypeCIDR struct {
	Value string
}

func (t *TypeCIDR) Set(value string) error {
	value = strings.TrimSpace(value)

	if strings.Contains(value, "/") {
		if _, _, err := net.ParseCIDR(value); err != nil {
			return fmt.Errorf("incorrect network (%s): %w", value, err)
		}
	} else if net.ParseIP(value) == nil {
		return fmt.Errorf("incorrect ip address (%s)", value)
	}

	t.Value = value

	return nil
}

func (t *TypeCIDR) UnmarshalText(data []byte) error {
	return t.Set(string(data))
}

func (t TypeCIDR) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t TypeCIDR) String() string {
	return t.Value
}
