// Package sink has implementations of [gatelib.TelemetrySink].
//
// Authenticated records end up in InfluxDB. [Influx] knows how to write a
// batch of records; [Async] collects records into batches and writes
// them on a worker pool so a request never waits for the storage.
package sink

import (
	"context"
	"errors"
	"time"

	"github.com/influxgate/influxgate/gatelib"
)

const (
	// DefaultBatchSize is a number of records which are written in a
	// single request.
	DefaultBatchSize = 500

	// DefaultFlushInterval is a maximal time a record waits in a
	// batch.
	DefaultFlushInterval = time.Second

	// DefaultConcurrency is a number of batches which can be written
	// simultaneously. If all workers are busy, a batch is dropped.
	DefaultConcurrency = 4

	// DefaultWriteTimeout is a timeout of a single write request.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultShutdownTimeout is a time given to in-flight writes on
	// shutdown.
	DefaultShutdownTimeout = 15 * time.Second

	// DefaultUsername is a user which is used if nothing is set.
	DefaultUsername = "admin"

	influxErrorBodyLimit = 1024
)

var (
	// ErrUpstream is returned if InfluxDB responded with an error.
	ErrUpstream = errors.New("influxdb rejected a write")

	// ErrNotEncodable is returned if no record of the batch can be
	// represented in line protocol.
	ErrNotEncodable = errors.New("records cannot be encoded")

	// ErrDatabaseIsNotDefined is returned if database name is empty.
	ErrDatabaseIsNotDefined = errors.New("database is not defined")

	// ErrURLIsNotDefined is returned if InfluxDB URL is empty.
	ErrURLIsNotDefined = errors.New("influxdb url is not defined")

	// ErrWriterIsNotDefined is returned if async sink has nothing to
	// write to.
	ErrWriterIsNotDefined = errors.New("writer is not defined")

	errEmptyName = errors.New("measurement name is empty")
)

// Writer persists a batch of records.
//
// Write may reorder records of the batch.
type Writer interface {
	Write(ctx context.Context, records []gatelib.TelemetryRecord) error
}
