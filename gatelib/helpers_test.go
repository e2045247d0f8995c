package gatelib_test

import (
	"bytes"
	"net"
	"testing"

	"github.com/influxgate/influxgate/gatelib"
)

const samplePayload = `{"time":1600000000000000000,"duration":1500000,"gateway":true,` +
	`"method":"POST","uri":"/api/v1/items?limit=10","name":"billing",` +
	`"id":340282366920938463463374607431768211455,` +
	`"tcpip":{"src":"10.0.0.1","dst":"10.0.0.2","sport":51000,"dport":8080}}`

func makeMessage(nonce, expires string) string {
	return `{"nonce":` + nonce + `,"expires":` + expires + `,"payload":` + samplePayload + `}`
}

func sampleKey(tb testing.TB) gatelib.SecretKey {
	tb.Helper()

	key, err := gatelib.NewSecretKey(bytes.Repeat([]byte{0x5a}, gatelib.SecretKeyLength))
	if err != nil {
		tb.Fatal(err)
	}

	return key
}

func sampleRecord() gatelib.TelemetryRecord {
	return gatelib.TelemetryRecord{
		Time:     gatelib.Uint128From64(1600000000000000000),
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
