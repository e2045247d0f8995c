package gatelib

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net"
	"sort"
	"time"
)

// Method is an HTTP method of the observed request.
type Method uint8

// Known methods. Collectors never send anything else.
const (
	MethodGet Method = iota + 1
	MethodPut
	MethodPost
	MethodDelete
	MethodOptions
	MethodHead
	MethodTrace
	MethodConnect
	MethodPatch
)

var methodNames = map[Method]string{
	MethodGet:     "GET",
	MethodPut:     "PUT",
	MethodPost:    "POST",
	MethodDelete:  "DELETE",
	MethodOptions: "OPTIONS",
	MethodHead:    "HEAD",
	MethodTrace:   "TRACE",
	MethodConnect: "CONNECT",
	MethodPatch:   "PATCH",
}

func (m Method) String() string {
	return methodNames[m]
}

// MarshalText returns a method name.
func (m Method) MarshalText() ([]byte, error) {
	if name, ok := methodNames[m]; ok {
		return []byte(name), nil
	}

	return nil, fmt.Errorf("unknown method %d", m)
}

// UnmarshalText parses a method name. Names are case-sensitive.
func (m *Method) UnmarshalText(data []byte) error {
	for k, v := range methodNames {
		if v == string(data) {
			*m = k

			return nil
		}
	}

	return fmt.Errorf("unknown method %q", string(data))
}

// TCPIP is a network 4-tuple of the observed request.
type TCPIP struct {
	Src   net.IP `json:"src"`
	Dst   net.IP `json:"dst"`
	SPort uint16 `json:"sport"`
	DPort uint16 `json:"dport"`
}

// UnmarshalJSON requires all fields to be present.
func (t *TCPIP) UnmarshalJSON(data []byte) error {
	raw := struct {
		Src   *string `json:"src"`
		Dst   *string `json:"dst"`
		SPort *uint16 `json:"sport"`
		DPort *uint16 `json:"dport"`
	}{}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err //nolint: wrapcheck
	}

	switch {
	case raw.Src == nil:
		return errMissingField("src")
	case raw.Dst == nil:
		return errMissingField("dst")
	case raw.SPort == nil:
		return errMissingField("sport")
	case raw.DPort == nil:
		return errMissingField("dport")
	}

	src, err := parseIP(*raw.Src)
	if err != nil {
		return err
	}

	dst, err := parseIP(*raw.Dst)
	if err != nil {
		return err
	}

	*t = TCPIP{
		Src:   src,
		Dst:   dst,
		SPort: *raw.SPort,
		DPort: *raw.DPort,
	}

	return nil
}

// TelemetryRecord is a payload of the message: a single observation of
// the HTTP request made by a collector.
//
// Records are ordered by Time only.
type TelemetryRecord struct {
	// Time is a number of nanoseconds since UNIX epoch when the request
	// was observed.
	Time Uint128 `json:"time"`

	// Duration is a time between request and response in nanoseconds.
	Duration uint64 `json:"duration"`

	// Gateway is true if the observation was made on a gateway.
	Gateway bool `json:"gateway"`

	Method Method `json:"method"`
	URI    string `json:"uri"`

	// Name is a name of the service. It becomes a measurement name.
	Name string `json:"name"`

	// ID is an identifier of the request (md5 of X-Request-ID).
	ID Uint128 `json:"id"`

	TCPIP TCPIP `json:"tcpip"`
}

// UnmarshalJSON requires all fields to be present.
func (t *TelemetryRecord) UnmarshalJSON(data []byte) error { //nolint: cyclop
	raw := struct {
		Time     *Uint128 `json:"time"`
		Duration *uint64  `json:"duration"`
		Gateway  *bool    `json:"gateway"`
		Method   *Method  `json:"method"`
		URI      *string  `json:"uri"`
		Name     *string  `json:"name"`
		ID       *Uint128 `json:"id"`
		TCPIP    *TCPIP   `json:"tcpip"`
	}{}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err //nolint: wrapcheck
	}

	switch {
	case raw.Time == nil:
		return errMissingField("time")
	case raw.Duration == nil:
		return errMissingField("duration")
	case raw.Gateway == nil:
		return errMissingField("gateway")
	case raw.Method == nil:
		return errMissingField("method")
	case raw.URI == nil:
		return errMissingField("uri")
	case raw.Name == nil:
		return errMissingField("name")
	case raw.ID == nil:
		return errMissingField("id")
	case raw.TCPIP == nil:
		return errMissingField("tcpip")
	}

	*t = TelemetryRecord{
		Time:     *raw.Time,
		Duration: *raw.Duration,
		Gateway:  *raw.Gateway,
		Method:   *raw.Method,
		URI:      *raw.URI,
		Name:     *raw.Name,
		ID:       *raw.ID,
		TCPIP:    *raw.TCPIP,
	}

	return nil
}

// Compare orders records by their time. Ties are equal.
func (t TelemetryRecord) Compare(other TelemetryRecord) int {
	return t.Time.Cmp(other.Time.Uint128)
}

// SortRecords sorts records by time in place. Order of records with the
// same time is unspecified.
func SortRecords(records []TelemetryRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].Compare(records[j]) < 0
	})
}

// Envelope is a decoded message.
type Envelope struct {
	// Nonce is a single-use token of the message.
	Nonce Uint128

	// Expires is a time since UNIX epoch after which the message is not
	// valid anymore.
	Expires time.Duration

	Payload TelemetryRecord
}

type wireExpiry struct {
	Secs  *uint64 `json:"secs"`
	Nanos *uint32 `json:"nanos"`
}

type wireEnvelope struct {
	Nonce   *Uint128         `json:"nonce"`
	Expires json.RawMessage  `json:"expires"`
	Payload *TelemetryRecord `json:"payload"`
}

// MarshalJSON encodes an envelope the way collectors do: expiry is an
// object of seconds and nanoseconds.
func (e Envelope) MarshalJSON() ([]byte, error) {
	expires := e.Expires
	if expires < 0 {
		expires = 0
	}

	secs := uint64(expires / time.Second)
	nanos := uint32(expires % time.Second)

	rawExpiry, err := json.Marshal(wireExpiry{Secs: &secs, Nanos: &nanos})
	if err != nil {
		return nil, err //nolint: wrapcheck
	}

	return json.Marshal(wireEnvelope{ //nolint: wrapcheck
		Nonce:   &e.Nonce,
		Expires: rawExpiry,
		Payload: &e.Payload,
	})
}

// UnmarshalJSON decodes an envelope. Expiry is either an integer number
// of seconds or an object {"secs": N, "nanos": N}.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	raw := wireEnvelope{}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err //nolint: wrapcheck
	}

	switch {
	case raw.Nonce == nil:
		return errMissingField("nonce")
	case raw.Expires == nil:
		return errMissingField("expires")
	case raw.Payload == nil:
		return errMissingField("payload")
	}

	expires, err := parseExpiry(raw.Expires)
	if err != nil {
		return err
	}

	*e = Envelope{
		Nonce:   *raw.Nonce,
		Expires: expires,
		Payload: *raw.Payload,
	}

	return nil
}

func parseExpiry(data json.RawMessage) (time.Duration, error) {
	data = bytes.TrimSpace(data)

	if len(data) > 0 && data[0] == '{' {
		raw := wireExpiry{}

		if err := json.Unmarshal(data, &raw); err != nil {
			return 0, fmt.Errorf("incorrect expiry: %w", err)
		}

		switch {
		case raw.Secs == nil:
			return 0, errMissingField("expires.secs")
		case raw.Nanos == nil:
			return 0, errMissingField("expires.nanos")
		case *raw.Nanos >= uint32(time.Second):
			return 0, fmt.Errorf("incorrect expiry: nanos overflow %d", *raw.Nanos)
		}

		return durationFromSeconds(*raw.Secs, *raw.Nanos), nil
	}

	// null is not a number, this is checked by isDecimal.
	if !isDecimal(string(data)) {
		return 0, fmt.Errorf("incorrect expiry: %s", string(data))
	}

	var secs uint64

	if err := json.Unmarshal(data, &secs); err != nil {
		return 0, fmt.Errorf("incorrect expiry: %w", err)
	}

	return durationFromSeconds(secs, 0), nil
}

// durationFromSeconds saturates instead of overflow. An expiry in a very
// distant future is still an expiry in a future.
func durationFromSeconds(secs uint64, nanos uint32) time.Duration {
	maxSecs := uint64(math.MaxInt64 / int64(time.Second))

	if secs > maxSecs {
		return time.Duration(math.MaxInt64)
	}

	rv := time.Duration(secs) * time.Second

	if rv > time.Duration(math.MaxInt64)-time.Duration(nanos) {
		return time.Duration(math.MaxInt64)
	}

	return rv + time.Duration(nanos)
}

func parseIP(text string) (net.IP, error) {
	ip := net.ParseIP(text)
	if ip == nil {
		return nil, fmt.Errorf("incorrect ip address %q", text)
	}

	return ip, nil
}

func errMissingField(name string) error {
	return fmt.Errorf("missing field %s", name)
}
