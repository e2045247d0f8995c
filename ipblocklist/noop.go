package ipblocklist

import (
	"net"

	"github.com/influxgate/influxgate/gatelib"
)

type noop struct{}

func (n noop) Contains(ip net.IP) bool { return false }
func (n noop) Shutdown()               {}

// NewNoop returns a dummy ipblocklist which allows all incoming
// requests.
func NewNoop() gatelib.IPBlocklist {
	return noop{}
}
