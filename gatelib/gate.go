package gatelib

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Response texts. Collectors and dashboards match on them, so they are
// stable.
const (
	MessageSuccess          = "Success."
	MessageNotFound         = "Resource not found."
	MessageMethodNotAllowed = "This end point is only available over POST."
	MessageWrongContentType = "Content-Type needs to be application/json."
	MessageMalformedRequest = "The request could not be understood by the server due to malformed syntax."
	MessageMalformedData    = "Provided data was not formatted correctly."
	MessageRequestTooLarge  = "The request is too large."
	MessageAccessDenied     = "Access denied."
	MessageTooManyRequests  = "Too many requests."
)

var errAssertionShape = errors.New("assertion has incorrect shape")

var authErrorMessages = map[error]string{
	ErrSignatureFormat:  "The signature must be base64 encoded.",
	ErrInvalidSignature: "The signature is invalid.",
	ErrInvalidMessage:   "The message is not formatted correctly.",
	ErrExpired:          "The request is expired.",
	ErrLongValidity:     "The request expires too far in the future.",
	ErrNonceReuse:       "This nonce was used before.",
}

type responseMessage struct {
	Message string `json:"message"`
}

// Gate is an HTTP endpoint which accepts assertions from collectors,
// authenticates them and passes telemetry records to the sink.
type Gate struct {
	ctx             context.Context
	ctxCancel       context.CancelFunc
	streamWaitGroup sync.WaitGroup
	shutdownOnce    sync.Once

	server      *http.Server
	pipeline    *Pipeline
	sink        TelemetrySink
	blocklist   IPBlocklist
	allowlist   IPBlocklist
	eventStream EventStream
	logger      Logger
	rateLimiter *RateLimiter
	maxBodySize int64
	clock       func() time.Time
}

// ServeHTTP serves a single request. Gate can be mounted into any
// http.Handler tree, Serve is just a convenience.
func (g *Gate) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	started := time.Now()
	streamID := uuid.NewString()
	ipAddr := remoteIP(req.RemoteAddr)
	ctx := req.Context()
	logger := g.logger.
		BindStr("request-id", streamID).
		BindStr("ip", hashIP(ipAddr))

	g.eventStream.Send(ctx, NewEventRequestStart(streamID, ipAddr, req.URL.Path))
	logger.Debug("Request has been started")

	status := g.serve(ctx, w, req, streamID, ipAddr, logger)

	g.eventStream.Send(ctx, NewEventRequestFinish(streamID, status, time.Since(started)))
	logger.BindInt("status", status).Debug("Request has been finished")
}

func (g *Gate) serve(ctx context.Context, //nolint: cyclop
	w http.ResponseWriter,
	req *http.Request,
	streamID string,
	ipAddr net.IP,
	logger Logger,
) int {
	if !g.allowlist.Contains(ipAddr) {
		logger.Info("ip was rejected by allowlist")
		g.eventStream.Send(ctx, NewEventIPAllowlisted(streamID, ipAddr))

		return respond(w, http.StatusForbidden, MessageAccessDenied)
	}

	if g.blocklist.Contains(ipAddr) {
		logger.Info("ip was blacklisted")
		g.eventStream.Send(ctx, NewEventIPBlocklisted(streamID, ipAddr))

		return respond(w, http.StatusForbidden, MessageAccessDenied)
	}

	if g.rateLimiter != nil && !g.rateLimiter.Allow(ipAddr) {
		logger.Warning("Rate limited")
		g.eventStream.Send(ctx, NewEventRateLimited(streamID, ipAddr))

		return respond(w, http.StatusTooManyRequests, MessageTooManyRequests)
	}

	if req.URL.Path != UpdatePath {
		return respond(w, http.StatusNotFound, MessageNotFound)
	}

	switch req.Method {
	case http.MethodPost:
	case http.MethodGet:
		return respond(w, http.StatusMethodNotAllowed, MessageMethodNotAllowed)
	default:
		return respond(w, http.StatusNotFound, MessageNotFound)
	}

	if !isJSONContentType(req.Header.Get("Content-Type")) {
		return respond(w, http.StatusUnprocessableEntity, MessageWrongContentType)
	}

	assertion, err := g.readAssertion(w, req)
	if err != nil {
		logger.DebugError("cannot read assertion", err)

		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return respond(w, http.StatusRequestEntityTooLarge, MessageRequestTooLarge)
		}

		if errors.Is(err, errAssertionShape) {
			return respond(w, http.StatusUnprocessableEntity, MessageMalformedData)
		}

		return respond(w, http.StatusUnprocessableEntity, MessageMalformedRequest)
	}

	record, err := g.pipeline.Authenticate(assertion.Message, assertion.Sig, time.Duration(g.clock().UnixNano()))
	if err != nil {
		g.eventStream.Send(ctx, NewEventAuthRejected(streamID, err))

		if errors.Is(err, ErrNonceReuse) {
			logger.Warning("replay attack has been detected!")
			g.eventStream.Send(ctx, NewEventReplayAttack(streamID))
		} else {
			logger.InfoError("assertion is rejected", err)
		}

		return respond(w, http.StatusUnauthorized, authErrorMessages[AuthErrorKind(err)])
	}

	// Сначала решаем статус, потом отдаём запись: ошибки хранилища на
	// ответ не влияют.
	g.sink.Send(g.ctx, record)
	g.eventStream.Send(ctx, NewEventAuthenticated(streamID, record.Name))
	logger.BindStr("name", record.Name).Debug("assertion is accepted")

	return respond(w, http.StatusOK, MessageSuccess)
}

func (g *Gate) readAssertion(w http.ResponseWriter, req *http.Request) (Assertion, error) {
	raw := struct {
		Message *string `json:"message"`
		Sig     *string `json:"sig"`
	}{}

	decoder := json.NewDecoder(http.MaxBytesReader(w, req.Body, g.maxBodySize))

	if err := decoder.Decode(&raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return Assertion{}, fmt.Errorf("%w: %w", errAssertionShape, err)
		}

		return Assertion{}, fmt.Errorf("cannot decode json: %w", err)
	}

	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return Assertion{}, errors.New("unexpected data after json object")
	}

	switch {
	case raw.Message == nil:
		return Assertion{}, fmt.Errorf("%w: %w", errAssertionShape, errMissingField("message"))
	case raw.Sig == nil:
		return Assertion{}, fmt.Errorf("%w: %w", errAssertionShape, errMissingField("sig"))
	}

	return Assertion{
		Message: *raw.Message,
		Sig:     *raw.Sig,
	}, nil
}

// Serve starts a gate on a given listener. It returns nil after
// Shutdown.
func (g *Gate) Serve(listener net.Listener) error {
	if err := g.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("cannot serve http: %w", err)
	}

	return nil
}

// Shutdown 'gracefully' shutdowns the gate: in-flight requests are
// given DefaultShutdownTimeout to complete. Please remember that it does
// not close a sink, it is owned by a caller.
func (g *Gate) Shutdown() {
	g.shutdownOnce.Do(g.shutdown)
}

func (g *Gate) shutdown() {
	g.ctxCancel()

	ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()

	if err := g.server.Shutdown(ctx); err != nil {
		g.logger.WarningError("cannot shutdown http server gracefully", err)
	}

	g.streamWaitGroup.Wait()

	g.allowlist.Shutdown()
	g.blocklist.Shutdown()

	if g.rateLimiter != nil {
		g.rateLimiter.Stop()
	}
}

func (g *Gate) reportReplayCacheSize(interval time.Duration) {
	defer g.streamWaitGroup.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-g.ctx.Done():
			return
		case <-ticker.C:
			if current, expiring, ok := g.pipeline.ReplayCacheSize(); ok {
				g.eventStream.Send(g.ctx, NewEventReplayCacheSize(current, expiring))
			}
		}
	}
}

// NewGate makes a new gate instance.
func NewGate(opts GateOpts) (*Gate, error) {
	if err := opts.valid(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	gate := &Gate{
		ctx:         ctx,
		ctxCancel:   cancel,
		pipeline:    opts.Pipeline,
		sink:        opts.Sink,
		blocklist:   opts.IPBlocklist,
		allowlist:   opts.IPAllowlist,
		eventStream: opts.EventStream,
		logger:      opts.getLogger("gate"),
		maxBodySize: opts.getMaxBodySize(),
		clock:       opts.getClock(),
	}

	if opts.getRateLimitPerSecond() > 0 {
		gate.rateLimiter = NewRateLimiter(
			opts.getRateLimitPerSecond(),
			opts.getRateLimitBurst(),
			DefaultRateLimiterCleanup)
	}

	gate.server = &http.Server{
		Handler:           gate,
		ReadHeaderTimeout: opts.getReadHeaderTimeout(),
		IdleTimeout:       opts.getIdleTimeout(),
	}

	gate.streamWaitGroup.Add(1)

	go gate.reportReplayCacheSize(opts.getReplayCacheReportInterval())

	return gate, nil
}

func respond(w http.ResponseWriter, status int, message string) int {
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(responseMessage{Message: message}) //nolint: errcheck,errchkjson

	return status
}

func isJSONContentType(value string) bool {
	mediaType, _, err := mime.ParseMediaType(value)

	return err == nil && mediaType == ContentTypeJSON
}

func remoteIP(addr string) net.IP {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	if ip := net.ParseIP(host); ip != nil {
		return ip
	}

	return net.IPv4zero
}
