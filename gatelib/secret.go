package gatelib

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// SecretKey is a shared secret key of the gate. Collectors sign their
// messages with the same key.
//
// The key is immutable: it is copied into every structure that uses it.
// Text representation is standard base64 with padding, the same format
// collectors read from INFLUX_SKEY.
type SecretKey struct {
	Key [SecretKeyLength]byte
}

// Valid reports if key is initialized. An all-zero key is considered
// uninitialized.
func (s SecretKey) Valid() bool {
	var zero [SecretKeyLength]byte

	return s.Key != zero
}

// Base64 returns a base64 encoded key.
func (s SecretKey) Base64() string {
	return base64.StdEncoding.EncodeToString(s.Key[:])
}

// String masks the key so it never gets into logs by accident.
func (s SecretKey) String() string {
	if !s.Valid() {
		return ""
	}

	return "***"
}

// MarshalText masks the key as well. Use Base64 to get a real value.
func (s SecretKey) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses base64 encoded key.
func (s *SecretKey) UnmarshalText(data []byte) error {
	parsed, err := ParseSecretKey(string(data))
	if err != nil {
		return err
	}

	*s = parsed

	return nil
}

// ParseSecretKey decodes a base64 encoded key.
func ParseSecretKey(text string) (SecretKey, error) {
	if text == "" {
		return SecretKey{}, ErrSecretKeyEmpty
	}

	decoded, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return SecretKey{}, fmt.Errorf("incorrect base64 encoding of the key: %w", err)
	}

	return NewSecretKey(decoded)
}

// NewSecretKey builds a key from raw bytes.
func NewSecretKey(raw []byte) (SecretKey, error) {
	rv := SecretKey{}

	if len(raw) != SecretKeyLength {
		return rv, fmt.Errorf("%w: expected %d bytes, got %d",
			ErrSecretKeyLength, SecretKeyLength, len(raw))
	}

	copy(rv.Key[:], raw)

	if !rv.Valid() {
		return rv, ErrSecretKeyEmpty
	}

	return rv, nil
}

// GenerateSecretKey makes a new random key.
func GenerateSecretKey() SecretKey {
	rv := SecretKey{}

	if _, err := rand.Read(rv.Key[:]); err != nil {
		panic(err)
	}

	return rv
}
