package sink

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/influxgate/influxgate/gatelib"
	"github.com/panjf2000/ants/v2"
)

// AsyncOpts is a set of settings for [Async].
type AsyncOpts struct {
	// Writer persists batches.
	//
	// This is a mandatory setting.
	Writer Writer

	// EventStream receives EventSinkWrite and EventSinkDropped events.
	//
	// This is a mandatory setting.
	EventStream gatelib.EventStream

	// Logger defines an instance of the logger.
	//
	// This is a mandatory setting.
	Logger gatelib.Logger

	// BatchSize is a maximal number of records in a single write.
	//
	// This is an optional setting.
	BatchSize uint

	// FlushInterval is a maximal time a record waits for its batch to
	// fill up.
	//
	// This is an optional setting.
	FlushInterval time.Duration

	// Concurrency is a number of batches written simultaneously.
	//
	// This is an optional setting.
	Concurrency uint

	// WriteTimeout is a timeout of a single write.
	//
	// This is an optional setting.
	WriteTimeout time.Duration
}

func (a AsyncOpts) valid() error {
	switch {
	case a.Writer == nil:
		return ErrWriterIsNotDefined
	case a.EventStream == nil:
		return gatelib.ErrEventStreamIsNotDefined
	case a.Logger == nil:
		return gatelib.ErrLoggerIsNotDefined
	}

	return nil
}

func (a AsyncOpts) getBatchSize() int {
	if a.BatchSize == 0 {
		return DefaultBatchSize
	}

	return int(a.BatchSize)
}

func (a AsyncOpts) getFlushInterval() time.Duration {
	if a.FlushInterval == 0 {
		return DefaultFlushInterval
	}

	return a.FlushInterval
}

func (a AsyncOpts) getConcurrency() int {
	if a.Concurrency == 0 {
		return DefaultConcurrency
	}

	return int(a.Concurrency)
}

func (a AsyncOpts) getWriteTimeout() time.Duration {
	if a.WriteTimeout == 0 {
		return DefaultWriteTimeout
	}

	return a.WriteTimeout
}

// Async is a [gatelib.TelemetrySink] which collects records into batches
// and writes them in background.
//
// A batch is written when it is full or when flush interval passes.
// Writes are done on a bounded worker pool. If all workers are busy,
// a batch is dropped: a gate should never be blocked by its storage.
type Async struct {
	ctx            context.Context
	ctxCancel      context.CancelFunc
	flushWaitGroup sync.WaitGroup
	mutex          sync.Mutex
	closed         bool

	batch        []gatelib.TelemetryRecord
	batchSize    int
	writeTimeout time.Duration

	writer      Writer
	workerPool  *ants.PoolWithFunc
	eventStream gatelib.EventStream
	logger      gatelib.Logger
}

// Send adds a record to the current batch.
func (a *Async) Send(ctx context.Context, record gatelib.TelemetryRecord) {
	var full []gatelib.TelemetryRecord

	a.mutex.Lock()

	if a.closed {
		a.mutex.Unlock()
		a.drop(ctx, 1, "sink is closed")

		return
	}

	a.batch = append(a.batch, record)

	if len(a.batch) >= a.batchSize {
		full = a.batch
		a.batch = make([]gatelib.TelemetryRecord, 0, a.batchSize)
	}

	a.mutex.Unlock()

	if full != nil {
		a.dispatch(ctx, full)
	}
}

// Flush dispatches current batch to a worker pool even if it is not
// full yet.
func (a *Async) Flush() {
	a.mutex.Lock()
	batch := a.batch
	a.batch = make([]gatelib.TelemetryRecord, 0, a.batchSize)
	a.mutex.Unlock()

	if len(batch) > 0 {
		a.dispatch(a.ctx, batch)
	}
}

// Shutdown writes what is collected and waits for in-flight writes.
func (a *Async) Shutdown() {
	a.mutex.Lock()

	if a.closed {
		a.mutex.Unlock()

		return
	}

	a.closed = true
	a.mutex.Unlock()

	a.ctxCancel()
	a.flushWaitGroup.Wait()

	if err := a.workerPool.ReleaseTimeout(DefaultShutdownTimeout); err != nil {
		a.logger.WarningError("some writes were not finished", err)
	}

	// Хвост пишется синхронно: пул уже закрыт, а терять его нельзя.
	a.mutex.Lock()
	batch := a.batch
	a.batch = nil
	a.mutex.Unlock()

	if len(batch) > 0 {
		a.write(batch)
	}
}

func (a *Async) dispatch(ctx context.Context, batch []gatelib.TelemetryRecord) {
	err := a.workerPool.Invoke(batch)

	switch {
	case err == nil:
	case errors.Is(err, ants.ErrPoolClosed):
		a.drop(ctx, len(batch), "sink is closed")
	case errors.Is(err, ants.ErrPoolOverload):
		a.drop(ctx, len(batch), "all writers are busy")
	default:
		a.logger.WarningError("cannot dispatch a batch", err)
		a.drop(ctx, len(batch), "cannot dispatch")
	}
}

func (a *Async) drop(ctx context.Context, count int, reason string) {
	a.logger.BindInt("count", count).Warning("records are dropped: " + reason)
	a.eventStream.Send(ctx, gatelib.NewEventSinkDropped(count))
}

func (a *Async) write(batch []gatelib.TelemetryRecord) {
	// Запись не должна прерываться отменой контекста на shutdown:
	// ReleaseTimeout дожидается её.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(a.ctx), a.writeTimeout)
	defer cancel()

	started := time.Now()
	err := a.writer.Write(ctx, batch)

	a.eventStream.Send(ctx, gatelib.NewEventSinkWrite(len(batch), err != nil, time.Since(started)))

	if err != nil {
		a.logger.BindInt("count", len(batch)).WarningError("cannot write records", err)
	}
}

func (a *Async) flushLoop(interval time.Duration) {
	defer a.flushWaitGroup.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
			a.Flush()
		}
	}
}

// NewAsync builds a new asynchronous sink.
func NewAsync(opts AsyncOpts) (*Async, error) {
	if err := opts.valid(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	logger := opts.Logger.Named("sink")
	sink := &Async{
		ctx:          ctx,
		ctxCancel:    cancel,
		batch:        make([]gatelib.TelemetryRecord, 0, opts.getBatchSize()),
		batchSize:    opts.getBatchSize(),
		writeTimeout: opts.getWriteTimeout(),
		writer:       opts.Writer,
		eventStream:  opts.EventStream,
		logger:       logger,
	}

	pool, err := ants.NewPoolWithFunc(opts.getConcurrency(),
		func(arg any) {
			sink.write(arg.([]gatelib.TelemetryRecord)) //nolint: forcetypeassert
		},
		ants.WithLogger(logger.Named("ants")),
		ants.WithNonblocking(true))
	if err != nil {
		cancel()

		return nil, fmt.Errorf("cannot create worker pool: %w", err)
	}

	sink.workerPool = pool

	sink.flushWaitGroup.Add(1)

	go sink.flushLoop(opts.getFlushInterval())

	return sink, nil
}
