package sink

import (
	"context"

	"github.com/influxgate/influxgate/gatelib"
)

type noop struct{}

func (n noop) Send(_ context.Context, _ gatelib.TelemetryRecord) {}

// NewNoop returns a sink which throws records away.
func NewNoop() gatelib.TelemetrySink {
	return noop{}
}
