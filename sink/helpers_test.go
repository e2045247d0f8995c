package sink_test

import (
	"net"

	"github.com/influxgate/influxgate/gatelib"
)

const sampleLine = "billing," +
	"dport=8080,dst=10.0.0.2,gateway=true," +
	"id=340282366920938463463374607431768211455," +
	`method=POST,sport=51000,src=10.0.0.1,uri=/api/v1/items?limit\=10 ` +
	"duration=1500000i 1600000000000000000\n"

func sampleRecord(timestamp uint64) gatelib.TelemetryRecord {
	return gatelib.TelemetryRecord{
		Time:     gatelib.Uint128From64(timestamp),
		Duration: 1500000,
		Gateway:  true,
		Method:   gatelib.MethodPost,
		URI:      "/api/v1/items?limit=10",
		Name:     "billing",
		ID:       gatelib.NewUint128(^uint64(0), ^uint64(0)),
		TCPIP: gatelib.TCPIP{
			Src:   net.ParseIP("10.0.0.1"),
			Dst:   net.ParseIP("10.0.0.2"),
			SPort: 51000,
			DPort: 8080,
		},
	}
}
