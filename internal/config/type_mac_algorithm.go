package config

import (
	"fmt"
	"strings"

	"github.com/influxgate/influxgate/gatelib"
)

type TypeMACAlgorithm struct {
	Value gatelib.MACAlgorithm
}

func (t *TypeMACAlgorithm) Set(value string) error {
	alg := gatelib.MACAlgorithm(strings.ToLower(strings.TrimSpace(value)))
	if !alg.Valid() {
		return fmt.Errorf("unknown mac algorithm %q, expected %q or %q",
			value, gatelib.MACHMACSHA256, gatelib.MACBlake2b256)
	}

	t.Value = alg

	return nil
}

func (t TypeMACAlgorithm) Get(defaultValue gatelib.MACAlgorithm) gatelib.MACAlgorithm {
	if t.Value == "" {
		return defaultValue
	}

	return t.Value
}

func (t *TypeMACAlgorithm) UnmarshalText(data []byte) error {
	return t.Set(string(data))
}

func (t TypeMACAlgorithm) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t TypeMACAlgorithm) String() string {
	return string(t.Value)
}
