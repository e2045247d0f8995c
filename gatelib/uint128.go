package gatelib

import (
	"encoding/binary"
	"fmt"

	"lukechampine.com/uint128"
)

// Uint128 is an unsigned 128-bit integer which is used for nonces and
// request identifiers. In JSON it is a plain number, without quotes.
type Uint128 struct {
	uint128.Uint128
}

// NewUint128 builds Uint128 from 2 halves.
func NewUint128(hi, lo uint64) Uint128 {
	return Uint128{uint128.New(lo, hi)}
}

// Uint128From64 builds Uint128 from uint64.
func Uint128From64(value uint64) Uint128 {
	return Uint128{uint128.From64(value)}
}

// ParseUint128 parses a decimal representation.
func ParseUint128(text string) (Uint128, error) {
	if !isDecimal(text) {
		return Uint128{}, fmt.Errorf("not a decimal unsigned integer: %q", text)
	}

	value, err := uint128.FromString(text)
	if err != nil {
		return Uint128{}, fmt.Errorf("cannot parse 128-bit integer: %w", err)
	}

	return Uint128{value}, nil
}

// Bytes returns 16 bytes of big-endian representation.
func (u Uint128) Bytes() []byte {
	rv := make([]byte, 16) //nolint: gomnd

	binary.BigEndian.PutUint64(rv[:8], u.Hi)
	binary.BigEndian.PutUint64(rv[8:], u.Lo)

	return rv
}

// MarshalJSON encodes a value as JSON number.
func (u Uint128) MarshalJSON() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalJSON decodes JSON number. Strings, fractions, exponents and
// negative numbers are rejected.
func (u *Uint128) UnmarshalJSON(data []byte) error {
	value, err := ParseUint128(string(data))
	if err != nil {
		return err
	}

	*u = value

	return nil
}

func isDecimal(text string) bool {
	if text == "" {
		return false
	}

	for i := 0; i < len(text); i++ {
		if text[i] < '0' || text[i] > '9' {
			return false
		}
	}

	return true
}
