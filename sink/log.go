package sink

import (
	"context"

	"github.com/influxgate/influxgate/gatelib"
)

// Log is a sink which writes records to the log in line protocol. It
// is useful for dry runs when there is no InfluxDB around.
type Log struct {
	logger gatelib.Logger
}

// Send logs a record.
func (l Log) Send(_ context.Context, record gatelib.TelemetryRecord) {
	l.Write(context.Background(), []gatelib.TelemetryRecord{record}) //nolint: errcheck
}

// Write logs a batch of records. It never fails: records which cannot
// be encoded are logged as warnings.
func (l Log) Write(_ context.Context, records []gatelib.TelemetryRecord) error {
	for _, record := range records {
		line, err := EncodeRecord(record)
		if err != nil {
			l.logger.BindStr("name", record.Name).WarningError("cannot encode record", err)

			continue
		}

		l.logger.BindStr("line", string(line)).Info("record")
	}

	return nil
}

// NewLog builds a new log sink.
func NewLog(logger gatelib.Logger) Log {
	return Log{
		logger: logger.Named("sink"),
	}
}
