package testlib

import (
	"context"

	"github.com/influxgate/influxgate/gatelib"
	"github.com/stretchr/testify/mock"
)

type GatelibTelemetrySinkMock struct {
	mock.Mock
}

func (m *GatelibTelemetrySinkMock) Send(ctx context.Context, record gatelib.TelemetryRecord) {
	m.Called(ctx, record)
}
