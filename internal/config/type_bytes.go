package config

import (
	"fmt"
	"strings"

	"github.com/alecthomas/units"
)

type TypeBytes struct {
	Value units.Base2Bytes
}

func (t *TypeBytes) Set(value string) error {
	normalized := strings.ReplaceAll(strings.TrimSpace(value), " ", "")

	parsed, err := units.ParseBase2Bytes(normalized)
	if err != nil {
		return fmt.Errorf("incorrect bytes value (%s): %w", value, err)
	}

	if parsed < 0 {
		return fmt.Errorf("bytes value has to be positive: %s", value)
	}

	t.Value = parsed

	return nil
}

func (t TypeBytes) Get(defaultValue uint) uint {
	if t.Value == 0 {
		return defaultValue
	}

	return uint(t.Value)
}

func (t *TypeBytes) UnmarshalText(data []byte) error {
	return t.Set(string(data))
}

func (t TypeBytes) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t TypeBytes) String() string {
	return t.Value.String()
}
