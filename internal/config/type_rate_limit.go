package config

import (
	"fmt"
	"strconv"
)

// TypeRateLimit — количество запросов в секунду на IP (0 = отключено).
// Дробные значения допустимы: 0.5 означает 1 запрос в 2 секунды.
type TypeRateLimit struct {
	Value float64
}

func (t *TypeRateLimit) Set(value string) error {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("value is not a number (%s): %w", value, err)
	}

	if v < 0 {
		return fmt.Errorf("rate limit has to be positive: %s", value)
	}

	t.Value = v

	return nil
}

func (t TypeRateLimit) Get(defaultValue float64) float64 {
	if t.Value == 0 {
		return defaultValue
	}

	return t.Value
}

func (t *TypeRateLimit) UnmarshalJSON(data []byte) error {
	return t.Set(string(data))
}

func (t TypeRateLimit) MarshalJSON() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t TypeRateLimit) String() string {
	return strconv.FormatFloat(t.Value, 'f', -1, 64)
}
