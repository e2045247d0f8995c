package config

import (
	"fmt"

	"github.com/influxgate/influxgate/gatelib"
)

// TypeSecretKey is a base64 encoded shared key. It is never rendered
// back: String and MarshalText mask it.
type TypeSecretKey struct {
	Value gatelib.SecretKey
}

func (t *TypeSecretKey) Set(value string) error {
	parsed, err := gatelib.ParseSecretKey(value)
	if err != nil {
		return fmt.Errorf("incorrect secret: %w", err)
	}

	t.Value = parsed

	return nil
}

func (t TypeSecretKey) Get(defaultValue gatelib.SecretKey) gatelib.SecretKey {
	if !t.Value.Valid() {
		return defaultValue
	}

	return t.Value
}

func (t *TypeSecretKey) UnmarshalText(data []byte) error {
	return t.Set(string(data))
}

func (t TypeSecretKey) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t TypeSecretKey) String() string {
	return t.Value.String()
}
