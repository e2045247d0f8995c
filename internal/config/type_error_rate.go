package config

import (
	"fmt"
	"strconv"
)

type TypeErrorRate struct {
	Value float64
}

func (t *TypeErrorRate) Set(value string) error {
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("value is not a float (%s): %w", value, err)
	}

	if parsed <= 0.0 || parsed >= 100.0 {
		return fmt.Errorf("error rate has to be in range (0, 100): %s", value)
	}

	t.Value = parsed

	return nil
}

func (t TypeErrorRate) Get(defaultValue float64) float64 {
	if t.Value == 0 {
		return defaultValue
	}

	return t.Value
}

func (t *TypeErrorRate) UnmarshalJSON(data []byte) error {
	return t.Set(string(data))
}

func (t TypeErrorRate) MarshalJSON() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t TypeErrorRate) String() string {
	return strconv.FormatFloat(t.Value, 'f', -1, 64)
}
