package gatelib_test

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/influxgate/influxgate/antireplay"
	"github.com/influxgate/influxgate/gatelib"
	"github.com/influxgate/influxgate/internal/testlib"
	"github.com/influxgate/influxgate/logger"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type GateTestSuite struct {
	suite.Suite

	key           gatelib.SecretKey
	sinkMock      *testlib.GatelibTelemetrySinkMock
	allowlistMock *testlib.GatelibIPBlocklistMock
	blocklistMock *testlib.GatelibIPBlocklistMock
	events        *testlib.EventStreamRecorder
	opts          gatelib.GateOpts
}

func (suite *GateTestSuite) SetupTest() {
	suite.key = sampleKey(suite.T())
	suite.sinkMock = &testlib.GatelibTelemetrySinkMock{}
	suite.allowlistMock = &testlib.GatelibIPBlocklistMock{}
	suite.blocklistMock = &testlib.GatelibIPBlocklistMock{}
	suite.events = &testlib.EventStreamRecorder{}

	suite.allowlistMock.On("Contains", mock.Anything).Maybe().Return(true)
	suite.allowlistMock.On("Shutdown").Maybe()
	suite.blocklistMock.On("Contains", mock.Anything).Maybe().Return(false)
	suite.blocklistMock.On("Shutdown").Maybe()

	pipeline, err := gatelib.NewPipeline(gatelib.PipelineOpts{
		Key:         suite.key,
		MaxValidity: time.Minute,
		ReplayCache: antireplay.NewGenerational(time.Minute),
	})
	suite.Require().NoError(err)

	suite.opts = gatelib.GateOpts{
		Pipeline:    pipeline,
		Sink:        suite.sinkMock,
		IPBlocklist: suite.blocklistMock,
		IPAllowlist: suite.allowlistMock,
		EventStream: suite.events,
		Logger:      logger.NewNoopLogger(),
		Clock: func() time.Time {
			return time.Unix(999, 0)
		},
	}
}

func (suite *GateTestSuite) TearDownTest() {
	suite.sinkMock.AssertExpectations(suite.T())
	suite.allowlistMock.AssertExpectations(suite.T())
	suite.blocklistMock.AssertExpectations(suite.T())
}

func (suite *GateTestSuite) makeGate() *gatelib.Gate {
	gate, err := gatelib.NewGate(suite.opts)
	suite.Require().NoError(err)

	suite.T().Cleanup(gate.Shutdown)

	return gate
}

func (suite *GateTestSuite) makeBody(message string) string {
	sig, err := gatelib.Sign(suite.key, gatelib.MACHMACSHA256, []byte(message))
	suite.Require().NoError(err)

	body, err := json.Marshal(gatelib.Assertion{Message: message, Sig: sig})
	suite.Require().NoError(err)

	return string(body)
}

func (suite *GateTestSuite) do(gate http.Handler, method, path, contentType, body string) (int, string) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.RemoteAddr = "192.0.2.1:41000"

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	resp := struct {
		Message string `json:"message"`
	}{}

	suite.Equal(gatelib.ContentTypeJSON, rec.Header().Get("Content-Type"))
	suite.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))

	return rec.Code, resp.Message
}

func (suite *GateTestSuite) post(gate http.Handler, body string) (int, string) {
	return suite.do(gate, http.MethodPost, gatelib.UpdatePath, "application/json", body)
}

func (suite *GateTestSuite) TestSuccessAndReplay() {
	gate := suite.makeGate()
	body := suite.makeBody(makeMessage("1", "1000"))

	suite.sinkMock.
		On("Send", mock.Anything, mock.MatchedBy(func(record gatelib.TelemetryRecord) bool {
			return record.Name == "billing" && record.Method == gatelib.MethodPost
		})).
		Once()

	status, message := suite.post(gate, body)
	suite.Equal(http.StatusOK, status)
	suite.Equal("Success.", message)

	status, message = suite.post(gate, body)
	suite.Equal(http.StatusUnauthorized, status)
	suite.Equal("This nonce was used before.", message)

	suite.Len(testlib.Filter[gatelib.EventAuthenticated](suite.events), 1)
	suite.Len(testlib.Filter[gatelib.EventReplayAttack](suite.events), 1)

	rejected := testlib.Filter[gatelib.EventAuthRejected](suite.events)
	suite.Len(rejected, 1)
	suite.Equal(gatelib.ErrNonceReuse, rejected[0].Reason)

	starts := testlib.Filter[gatelib.EventRequestStart](suite.events)
	finishes := testlib.Filter[gatelib.EventRequestFinish](suite.events)
	suite.Len(starts, 2)
	suite.Len(finishes, 2)
	suite.Equal(starts[0].StreamID(), finishes[0].StreamID())
	suite.NotEqual(starts[0].StreamID(), starts[1].StreamID())
	suite.Equal(http.StatusUnauthorized, finishes[1].Status)
	suite.Equal("192.0.2.1", starts[0].RemoteIP.String())
}

func (suite *GateTestSuite) TestAuthFailures() {
	gate := suite.makeGate()
	valid := makeMessage("7", "1000")

	sig, _ := gatelib.Sign(suite.key, gatelib.MACHMACSHA256, []byte(valid))
	sig = strings.Map(func(r rune) rune {
		if r == '=' {
			return r
		}

		return 'A'
	}, sig)
	corrupted, _ := json.Marshal(gatelib.Assertion{Message: valid, Sig: sig})

	testData := map[string]struct {
		body    string
		message string
	}{
		"bad base64": {
			body:    `{"message":"{}","sig":"%%%"}`,
			message: "The signature must be base64 encoded.",
		},
		"invalid signature": {
			body:    string(corrupted),
			message: "The signature is invalid.",
		},
		"invalid message": {
			body:    suite.makeBody(`{"nonce":1}`),
			message: "The message is not formatted correctly.",
		},
		"expired": {
			body:    suite.makeBody(makeMessage("8", "998")),
			message: "The request is expired.",
		},
		"too long": {
			body:    suite.makeBody(makeMessage("9", "100000")),
			message: "The request is expired.",
		},
	}

	for name, v := range testData {
		value := v

		suite.Run(name, func() {
			status, message := suite.post(gate, value.body)

			suite.Equal(http.StatusUnauthorized, status)
			suite.Equal(value.message, message)
		})
	}

	suite.Empty(testlib.Filter[gatelib.EventAuthenticated](suite.events))
	suite.Len(testlib.Filter[gatelib.EventAuthRejected](suite.events), len(testData))

	// nonce 7 is not consumed by the corrupted signature
	suite.sinkMock.On("Send", mock.Anything, mock.Anything).Once()

	status, _ := suite.post(gate, suite.makeBody(valid))
	suite.Equal(http.StatusOK, status)
}

func (suite *GateTestSuite) TestLongValiditySplit() {
	suite.opts.Pipeline, _ = gatelib.NewPipeline(gatelib.PipelineOpts{
		Key:               suite.key,
		ReplayCache:       antireplay.NewGenerational(time.Minute),
		SplitLongValidity: true,
	})
	gate := suite.makeGate()

	status, message := suite.post(gate, suite.makeBody(makeMessage("1", "100000")))
	suite.Equal(http.StatusUnauthorized, status)
	suite.Equal("The request expires too far in the future.", message)
}

func (suite *GateTestSuite) TestRouting() {
	gate := suite.makeGate()
	body := suite.makeBody(makeMessage("1", "1000"))

	testData := map[string]struct {
		method      string
		path        string
		contentType string
		body        string
		status      int
		message     string
	}{
		"get": {
			http.MethodGet, "/update", "", "",
			http.StatusMethodNotAllowed, "This end point is only available over POST.",
		},
		"put": {
			http.MethodPut, "/update", "application/json", body,
			http.StatusNotFound, "Resource not found.",
		},
		"unknown path": {
			http.MethodPost, "/write", "application/json", body,
			http.StatusNotFound, "Resource not found.",
		},
		"root": {
			http.MethodGet, "/", "", "",
			http.StatusNotFound, "Resource not found.",
		},
		"no content type": {
			http.MethodPost, "/update", "", body,
			http.StatusUnprocessableEntity, "Content-Type needs to be application/json.",
		},
		"form": {
			http.MethodPost, "/update", "application/x-www-form-urlencoded", body,
			http.StatusUnprocessableEntity, "Content-Type needs to be application/json.",
		},
		"malformed": {
			http.MethodPost, "/update", "application/json", `{"message":`,
			http.StatusUnprocessableEntity,
			"The request could not be understood by the server due to malformed syntax.",
		},
		"missing sig": {
			http.MethodPost, "/update", "application/json", `{"message":"{}"}`,
			http.StatusUnprocessableEntity, "Provided data was not formatted correctly.",
		},
		"wrong sig type": {
			http.MethodPost, "/update", "application/json", `{"message":"{}","sig":42}`,
			http.StatusUnprocessableEntity, "Provided data was not formatted correctly.",
		},
		"array": {
			http.MethodPost, "/update", "application/json", `[]`,
			http.StatusUnprocessableEntity, "Provided data was not formatted correctly.",
		},
		"trailing data": {
			http.MethodPost, "/update", "application/json", body + "{}",
			http.StatusUnprocessableEntity,
			"The request could not be understood by the server due to malformed syntax.",
		},
	}

	for name, v := range testData {
		value := v

		suite.Run(name, func() {
			status, message := suite.do(gate, value.method, value.path, value.contentType, value.body)

			suite.Equal(value.status, status)
			suite.Equal(value.message, message)
		})
	}
}

func (suite *GateTestSuite) TestContentTypeWithCharset() {
	gate := suite.makeGate()

	suite.sinkMock.On("Send", mock.Anything, mock.Anything).Once()

	status, _ := suite.do(gate, http.MethodPost, "/update", "application/json; charset=utf-8",
		suite.makeBody(makeMessage("1", "1000")))
	suite.Equal(http.StatusOK, status)
}

func (suite *GateTestSuite) TestBodyLimit() {
	suite.opts.MaxBodySize = 128
	gate := suite.makeGate()

	status, message := suite.post(gate, suite.makeBody(makeMessage("1", "1000")))
	suite.Equal(http.StatusRequestEntityTooLarge, status)
	suite.Equal("The request is too large.", message)
}

func (suite *GateTestSuite) TestBlocklist() {
	suite.blocklistMock = &testlib.GatelibIPBlocklistMock{}
	suite.blocklistMock.On("Contains", net.ParseIP("192.0.2.1")).Return(true)
	suite.blocklistMock.On("Shutdown").Once()
	suite.opts.IPBlocklist = suite.blocklistMock

	gate := suite.makeGate()

	status, message := suite.post(gate, suite.makeBody(makeMessage("1", "1000")))
	suite.Equal(http.StatusForbidden, status)
	suite.Equal("Access denied.", message)

	blocked := testlib.Filter[gatelib.EventIPBlocklisted](suite.events)
	suite.Len(blocked, 1)
	suite.True(blocked[0].IsBlockList)

	gate.Shutdown()
	suite.blocklistMock.AssertNumberOfCalls(suite.T(), "Shutdown", 1)
}

func (suite *GateTestSuite) TestAllowlist() {
	suite.allowlistMock = &testlib.GatelibIPBlocklistMock{}
	suite.allowlistMock.On("Contains", mock.Anything).Return(false)
	suite.allowlistMock.On("Shutdown").Once()
	suite.opts.IPAllowlist = suite.allowlistMock

	gate := suite.makeGate()

	status, _ := suite.post(gate, suite.makeBody(makeMessage("1", "1000")))
	suite.Equal(http.StatusForbidden, status)

	blocked := testlib.Filter[gatelib.EventIPBlocklisted](suite.events)
	suite.Len(blocked, 1)
	suite.False(blocked[0].IsBlockList)

	gate.Shutdown()
	suite.allowlistMock.AssertNumberOfCalls(suite.T(), "Shutdown", 1)
}

func (suite *GateTestSuite) TestShutdownTwice() {
	suite.blocklistMock = &testlib.GatelibIPBlocklistMock{}
	suite.blocklistMock.On("Shutdown").Once()
	suite.opts.IPBlocklist = suite.blocklistMock

	gate := suite.makeGate()

	gate.Shutdown()
	gate.Shutdown()

	suite.blocklistMock.AssertNumberOfCalls(suite.T(), "Shutdown", 1)
}

func (suite *GateTestSuite) TestRateLimit() {
	suite.opts.RateLimitPerSecond = 0.001
	suite.opts.RateLimitBurst = 1
	gate := suite.makeGate()

	suite.sinkMock.On("Send", mock.Anything, mock.Anything).Once()

	status, _ := suite.post(gate, suite.makeBody(makeMessage("1", "1000")))
	suite.Equal(http.StatusOK, status)

	status, message := suite.post(gate, suite.makeBody(makeMessage("2", "1000")))
	suite.Equal(http.StatusTooManyRequests, status)
	suite.Equal("Too many requests.", message)
	suite.Len(testlib.Filter[gatelib.EventRateLimited](suite.events), 1)
}

func (suite *GateTestSuite) TestReplayCacheSizeReport() {
	suite.opts.ReplayCacheReportInterval = 10 * time.Millisecond
	gate := suite.makeGate()

	suite.sinkMock.On("Send", mock.Anything, mock.Anything).Once()
	suite.post(gate, suite.makeBody(makeMessage("1", "1000")))

	suite.Eventually(func() bool {
		for _, evt := range testlib.Filter[gatelib.EventReplayCacheSize](suite.events) {
			if evt.Current == 1 {
				return true
			}
		}

		return false
	}, time.Second, 10*time.Millisecond)
}

func (suite *GateTestSuite) TestServe() {
	gate, err := gatelib.NewGate(suite.opts)
	suite.Require().NoError(err)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	suite.Require().NoError(err)

	served := make(chan error, 1)

	go func() {
		served <- gate.Serve(listener)
	}()

	resp, err := http.Get("http://" + listener.Addr().String() + "/update") //nolint: noctx
	suite.Require().NoError(err)

	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	suite.Equal(http.StatusMethodNotAllowed, resp.StatusCode)
	suite.Contains(string(data), "only available over POST")

	gate.Shutdown()

	select {
	case err := <-served:
		suite.NoError(err)
	case <-time.After(time.Second):
		suite.Fail("gate has not stopped")
	}
}

func (suite *GateTestSuite) TestBadOpts() {
	opts := suite.opts
	opts.Sink = nil

	_, err := gatelib.NewGate(opts)
	suite.ErrorIs(err, gatelib.ErrSinkIsNotDefined)

	opts = suite.opts
	opts.Pipeline = nil

	_, err = gatelib.NewGate(opts)
	suite.ErrorIs(err, gatelib.ErrPipelineIsNotDefined)
}

func TestGate(t *testing.T) {
	t.Parallel()
	suite.Run(t, &GateTestSuite{})
}
