package sink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/influxdata/line-protocol/v2/lineprotocol"
	"github.com/influxgate/influxgate/gatelib"
)

// InfluxOpts is a set of settings for [Influx].
type InfluxOpts struct {
	// URL is a base URL of InfluxDB, like http://127.0.0.1:8086.
	//
	// This is a mandatory setting.
	URL string

	// Database is a name of the database to write to.
	//
	// This is a mandatory setting.
	Database string

	// RetentionPolicy is a name of the retention policy.
	//
	// This is an optional setting. Default policy of the database is
	// used if empty.
	RetentionPolicy string

	// Username is used for basic authentication.
	//
	// This is an optional setting. Default is admin.
	Username string

	// Password is used for basic authentication.
	//
	// This is an optional setting.
	Password string

	// HTTPClient is used to talk to InfluxDB.
	//
	// This is an optional setting.
	HTTPClient *http.Client

	// Logger defines an instance of the logger.
	//
	// This is a mandatory setting.
	Logger gatelib.Logger
}

func (i InfluxOpts) valid() error {
	switch {
	case i.URL == "":
		return ErrURLIsNotDefined
	case i.Database == "":
		return ErrDatabaseIsNotDefined
	case i.Logger == nil:
		return gatelib.ErrLoggerIsNotDefined
	}

	return nil
}

func (i InfluxOpts) getUsername() string {
	if i.Username == "" {
		return DefaultUsername
	}

	return i.Username
}

func (i InfluxOpts) getHTTPClient() *http.Client {
	if i.HTTPClient == nil {
		return &http.Client{
			Timeout: DefaultWriteTimeout,
		}
	}

	return i.HTTPClient
}

// Influx writes records to InfluxDB 1.x with HTTP /write endpoint.
//
// Each record becomes a point: measurement is a name of the service,
// the only field is duration and everything else is a tag.
type Influx struct {
	httpClient *http.Client
	writeURL   string
	username   string
	password   string
	logger     gatelib.Logger
}

// Write sends a batch of records in a single request. Records are
// sorted by time before sending. Records which cannot be represented in
// line protocol are skipped with a warning.
func (i *Influx) Write(ctx context.Context, records []gatelib.TelemetryRecord) error {
	if len(records) == 0 {
		return nil
	}

	gatelib.SortRecords(records)

	body, skipped := i.encode(records)
	if skipped == len(records) {
		return fmt.Errorf("all %d records: %w", skipped, ErrNotEncodable)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.writeURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("cannot build a request: %w", err)
	}

	req.SetBasicAuth(i.username, i.password)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cannot send a request: %w", err)
	}

	defer func() {
		io.Copy(io.Discard, resp.Body) //nolint: errcheck
		resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	message, _ := io.ReadAll(io.LimitReader(resp.Body, influxErrorBodyLimit))

	return fmt.Errorf("status %d (%s): %w",
		resp.StatusCode, strings.TrimSpace(string(message)), ErrUpstream)
}

func (i *Influx) encode(records []gatelib.TelemetryRecord) ([]byte, int) {
	body := bytes.Buffer{}
	skipped := 0

	// Ошибка энкодера «липкая», поэтому каждая запись кодируется
	// отдельно: одна плохая запись не портит весь батч.
	enc := lineprotocol.Encoder{}
	enc.SetPrecision(lineprotocol.Nanosecond)

	for idx := range records {
		enc.Reset()

		if err := encodeRecord(&enc, &records[idx]); err != nil {
			skipped++

			i.logger.
				BindStr("name", records[idx].Name).
				WarningError("cannot encode record", err)

			continue
		}

		body.Write(enc.Bytes())
	}

	return body.Bytes(), skipped
}

// EncodeRecord renders a single record in InfluxDB line protocol with
// nanosecond precision.
func EncodeRecord(record gatelib.TelemetryRecord) ([]byte, error) {
	enc := lineprotocol.Encoder{}
	enc.SetPrecision(lineprotocol.Nanosecond)

	if err := encodeRecord(&enc, &record); err != nil {
		return nil, err
	}

	return enc.Bytes(), nil
}

func encodeRecord(enc *lineprotocol.Encoder, record *gatelib.TelemetryRecord) error {
	if record.Name == "" {
		return errEmptyName
	}

	// Теги обязаны идти в лексикографическом порядке.
	enc.StartLine(record.Name)
	enc.AddTag("dport", strconv.FormatUint(uint64(record.TCPIP.DPort), 10))
	enc.AddTag("dst", record.TCPIP.Dst.String())
	enc.AddTag("gateway", strconv.FormatBool(record.Gateway))
	enc.AddTag("id", record.ID.String())
	enc.AddTag("method", record.Method.String())
	enc.AddTag("sport", strconv.FormatUint(uint64(record.TCPIP.SPort), 10))
	enc.AddTag("src", record.TCPIP.Src.String())

	if record.URI != "" {
		enc.AddTag("uri", record.URI)
	}

	enc.AddField("duration", lineprotocol.MustNewValue(saturateInt64(record.Duration)))
	enc.EndLine(recordTime(record.Time))

	return enc.Err() //nolint: wrapcheck
}

func saturateInt64(value uint64) int64 {
	if value > math.MaxInt64 {
		return math.MaxInt64
	}

	return int64(value)
}

func recordTime(value gatelib.Uint128) time.Time {
	if value.Hi != 0 || value.Lo > math.MaxInt64 {
		return time.Unix(0, math.MaxInt64)
	}

	return time.Unix(0, int64(value.Lo))
}

// NewInflux builds a new InfluxDB writer.
func NewInflux(opts InfluxOpts) (*Influx, error) {
	if err := opts.valid(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	baseURL, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("incorrect influxdb url: %w", err)
	}

	if baseURL.Scheme != "http" && baseURL.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q of influxdb url", baseURL.Scheme)
	}

	query := url.Values{}
	query.Set("db", opts.Database)
	query.Set("precision", "ns")

	if opts.RetentionPolicy != "" {
		query.Set("rp", opts.RetentionPolicy)
	}

	baseURL.Path = strings.TrimRight(baseURL.Path, "/") + "/write"
	baseURL.RawQuery = query.Encode()

	return &Influx{
		httpClient: opts.getHTTPClient(),
		writeURL:   baseURL.String(),
		username:   opts.getUsername(),
		password:   opts.Password,
		logger:     opts.Logger.Named("influx"),
	}, nil
}
