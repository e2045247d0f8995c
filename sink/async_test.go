package sink_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/influxgate/influxgate/gatelib"
	"github.com/influxgate/influxgate/internal/testlib"
	"github.com/influxgate/influxgate/logger"
	"github.com/influxgate/influxgate/sink"
	"github.com/stretchr/testify/suite"
)

type writerRecorder struct {
	mutex   sync.Mutex
	batches [][]gatelib.TelemetryRecord
	release chan struct{}
	err     error
}

func (w *writerRecorder) Write(_ context.Context, records []gatelib.TelemetryRecord) error {
	if w.release != nil {
		<-w.release
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()

	w.batches = append(w.batches, append([]gatelib.TelemetryRecord{}, records...))

	return w.err
}

func (w *writerRecorder) Batches() [][]gatelib.TelemetryRecord {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	return append([][]gatelib.TelemetryRecord{}, w.batches...)
}

type AsyncTestSuite struct {
	suite.Suite

	ctx         context.Context
	ctxCancel   context.CancelFunc
	writer      *writerRecorder
	eventStream *testlib.EventStreamRecorder
}

func (suite *AsyncTestSuite) SetupTest() {
	suite.ctx, suite.ctxCancel = context.WithCancel(context.Background())
	suite.writer = &writerRecorder{}
	suite.eventStream = &testlib.EventStreamRecorder{}
}

func (suite *AsyncTestSuite) TearDownTest() {
	suite.ctxCancel()
}

func (suite *AsyncTestSuite) Make(opts sink.AsyncOpts) *sink.Async {
	opts.Writer = suite.writer
	opts.EventStream = suite.eventStream
	opts.Logger = logger.NewNoopLogger()

	async, err := sink.NewAsync(opts)
	suite.Require().NoError(err)

	return async
}

func (suite *AsyncTestSuite) TestFullBatch() {
	async := suite.Make(sink.AsyncOpts{
		BatchSize:     3,
		FlushInterval: time.Hour,
	})
	defer async.Shutdown()

	for i := 0; i < 7; i++ {
		async.Send(suite.ctx, sampleRecord(uint64(i)))
	}

	suite.Eventually(func() bool {
		return len(suite.writer.Batches()) == 2
	}, 2*time.Second, 10*time.Millisecond)

	for _, batch := range suite.writer.Batches() {
		suite.Len(batch, 3)
	}

	suite.Eventually(func() bool {
		return len(testlib.Filter[gatelib.EventSinkWrite](suite.eventStream)) == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func (suite *AsyncTestSuite) TestFlushInterval() {
	async := suite.Make(sink.AsyncOpts{
		BatchSize:     100,
		FlushInterval: 20 * time.Millisecond,
	})
	defer async.Shutdown()

	async.Send(suite.ctx, sampleRecord(1))

	suite.Eventually(func() bool {
		batches := suite.writer.Batches()

		return len(batches) == 1 && len(batches[0]) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func (suite *AsyncTestSuite) TestShutdownWritesTail() {
	async := suite.Make(sink.AsyncOpts{
		BatchSize:     100,
		FlushInterval: time.Hour,
	})

	async.Send(suite.ctx, sampleRecord(1))
	async.Send(suite.ctx, sampleRecord(2))
	async.Shutdown()

	batches := suite.writer.Batches()
	suite.Len(batches, 1)
	suite.Len(batches[0], 2)

	async.Send(suite.ctx, sampleRecord(3))

	dropped := testlib.Filter[gatelib.EventSinkDropped](suite.eventStream)
	suite.Len(dropped, 1)
	suite.Equal(1, dropped[0].Count)

	async.Shutdown()
}

func (suite *AsyncTestSuite) TestOverload() {
	suite.writer.release = make(chan struct{})

	async := suite.Make(sink.AsyncOpts{
		BatchSize:     1,
		FlushInterval: time.Hour,
		Concurrency:   1,
	})

	async.Send(suite.ctx, sampleRecord(1))

	suite.Eventually(func() bool {
		async.Send(suite.ctx, sampleRecord(2))

		return len(testlib.Filter[gatelib.EventSinkDropped](suite.eventStream)) > 0
	}, 2*time.Second, 10*time.Millisecond)

	close(suite.writer.release)
	async.Shutdown()

	suite.Len(suite.writer.Batches(), 1)
}

func (suite *AsyncTestSuite) TestWriteFailure() {
	suite.writer.err = errors.New("boom")

	async := suite.Make(sink.AsyncOpts{
		BatchSize: 1,
	})

	async.Send(suite.ctx, sampleRecord(1))
	async.Shutdown()

	writes := testlib.Filter[gatelib.EventSinkWrite](suite.eventStream)
	suite.Len(writes, 1)
	suite.True(writes[0].Failed)
	suite.Equal(1, writes[0].Count)
}

func (suite *AsyncTestSuite) TestBadOpts() {
	_, err := sink.NewAsync(sink.AsyncOpts{
		EventStream: suite.eventStream,
		Logger:      logger.NewNoopLogger(),
	})
	suite.ErrorIs(err, sink.ErrWriterIsNotDefined)

	_, err = sink.NewAsync(sink.AsyncOpts{
		Writer: suite.writer,
		Logger: logger.NewNoopLogger(),
	})
	suite.ErrorIs(err, gatelib.ErrEventStreamIsNotDefined)
}

func TestAsync(t *testing.T) {
	t.Parallel()
	suite.Run(t, &AsyncTestSuite{})
}
