package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/influxgate/influxgate/gatelib"
	"github.com/influxgate/influxgate/network"
)

const signResponseLimit = 4096

// Sign builds an assertion out of a telemetry record, the same way a
// collector does. The record is read as JSON from a file or stdin.
type Sign struct { //nolint: lll
	RecordPath string        `kong:"arg,optional,default='-',help='Path to a JSON file with a telemetry record. - means stdin.',name='record-path'"`
	Secret     string        `kong:"required,env='INFLUX_SKEY',help='Base64 encoded shared secret key.',name='secret',short='s'"`
	Algorithm  string        `kong:"default='hmac-sha256',enum='hmac-sha256,blake2b-256',help='MAC algorithm.',name='algorithm'"`
	ValidFor   time.Duration `kong:"default='30s',help='How long the message is valid.',name='valid-for'"`
	URL        string        `kong:"help='Send the assertion to this /update endpoint instead of printing it.',name='url'"`
}

func (s Sign) Run(cli *CLI, version string) error {
	key, err := gatelib.ParseSecretKey(s.Secret)
	if err != nil {
		return fmt.Errorf("incorrect secret: %w", err)
	}

	record, err := s.readRecord()
	if err != nil {
		return err
	}

	envelope := gatelib.NewEnvelope(record, time.Now(), s.ValidFor)

	assertion, err := gatelib.NewAssertion(key, gatelib.MACAlgorithm(s.Algorithm), envelope)
	if err != nil {
		return fmt.Errorf("cannot sign a record: %w", err)
	}

	body, err := json.Marshal(assertion)
	if err != nil {
		return fmt.Errorf("cannot encode an assertion: %w", err)
	}

	if s.URL == "" {
		fmt.Println(string(body)) //nolint: forbidigo

		return nil
	}

	return s.send(body, version)
}

func (s Sign) readRecord() (gatelib.TelemetryRecord, error) {
	var reader io.Reader = os.Stdin

	if s.RecordPath != "-" {
		file, err := os.Open(s.RecordPath)
		if err != nil {
			return gatelib.TelemetryRecord{}, fmt.Errorf("cannot open a record: %w", err)
		}

		defer file.Close()

		reader = file
	}

	record := gatelib.TelemetryRecord{}

	if err := json.NewDecoder(reader).Decode(&record); err != nil {
		return record, fmt.Errorf("cannot parse a record: %w", err)
	}

	return record, nil
}

func (s Sign) send(body []byte, version string) error {
	dialer, err := network.NewDefaultDialer(0)
	if err != nil {
		return fmt.Errorf("cannot build a dialer: %w", err)
	}

	ntw, err := network.NewNetwork(dialer, network.DefaultUserAgent+"/"+version, "", 0)
	if err != nil {
		return fmt.Errorf("cannot build a network: %w", err)
	}

	defer ntw.Stop()

	resp, err := ntw.MakeHTTPClient().Post(s.URL, gatelib.ContentTypeJSON, bytes.NewReader(body)) //nolint: noctx
	if err != nil {
		return fmt.Errorf("cannot send an assertion: %w", err)
	}

	defer resp.Body.Close()

	message, _ := io.ReadAll(io.LimitReader(resp.Body, signResponseLimit))

	fmt.Println(strings.TrimSpace(string(message))) //nolint: forbidigo

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gate has responded with status %d", resp.StatusCode)
	}

	return nil
}
