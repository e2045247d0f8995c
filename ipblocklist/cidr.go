package ipblocklist

import (
	"fmt"
	"net"
	"strings"

	"github.com/yl2chen/cidranger"
)

// CIDR is IPBlocklist which is built from a list of networks.
//
// Each entry is either a network in CIDR notation (10.0.0.0/8,
// 2001:db8::/32) or a single IP address.
type CIDR struct {
	ranger cidranger.Ranger
}

// Contains is a method to check if IP is in the list.
func (c CIDR) Contains(ip net.IP) bool {
	if ip == nil {
		return false
	}

	ok, err := c.ranger.Contains(ip)

	return err == nil && ok
}

// Size returns a number of networks in the list.
func (c CIDR) Size() int {
	return c.ranger.Len()
}

// Shutdown does nothing: the list is static.
func (c CIDR) Shutdown() {}

// NewCIDR builds a new list from given networks.
func NewCIDR(cidrs []string) (CIDR, error) {
	ranger := cidranger.NewPCTrieRanger()

	for _, value := range cidrs {
		network, err := parseNetwork(value)
		if err != nil {
			return CIDR{}, err
		}

		if err := ranger.Insert(cidranger.NewBasicRangerEntry(*network)); err != nil {
			return CIDR{}, fmt.Errorf("cannot add %s to the list: %w", value, err)
		}
	}

	return CIDR{
		ranger: ranger,
	}, nil
}

// NewAllowAll returns a list which contains every IPv4 and IPv6
// address. This is a default allowlist.
func NewAllowAll() CIDR {
	list, _ := NewCIDR([]string{"0.0.0.0/0", "::/0"})

	return list
}

func parseNetwork(value string) (*net.IPNet, error) {
	value = strings.TrimSpace(value)

	if !strings.Contains(value, "/") {
		ip := net.ParseIP(value)
		if ip == nil {
			return nil, fmt.Errorf("incorrect ip address %q", value)
		}

		if ip4 := ip.To4(); ip4 != nil {
			return &net.IPNet{IP: ip4, Mask: net.CIDRMask(net.IPv4len*8, net.IPv4len*8)}, nil
		}

		return &net.IPNet{IP: ip, Mask: net.CIDRMask(net.IPv6len*8, net.IPv6len*8)}, nil
	}

	_, network, err := net.ParseCIDR(value)
	if err != nil {
		return nil, fmt.Errorf("incorrect network %q: %w", value, err)
	}

	return network, nil
}
