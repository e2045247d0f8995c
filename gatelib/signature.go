package gatelib

import (
	"encoding/base64"
	"fmt"

	"github.com/influxgate/influxgate/gatelib/internal/mac"
)

// MACAlgorithm is a name of keyed MAC which protects messages.
type MACAlgorithm = mac.Algorithm

// Supported MAC algorithms.
const (
	MACHMACSHA256 = mac.HMACSHA256
	MACBlake2b256 = mac.Blake2b256

	DefaultMACAlgorithm = mac.HMACSHA256
)

// VerifySignature checks that signature is a valid tag of the message.
//
// signature is a standard base64 (with padding) encoding of the tag.
// If it cannot be decoded or has a wrong length, ErrSignatureFormat is
// returned. If the tag does not match, ErrInvalidSignature is returned.
// Tags are compared in constant time.
func VerifySignature(key SecretKey, alg MACAlgorithm, message []byte, signature string) error {
	tag, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSignatureFormat, err) //nolint: errorlint
	}

	if len(tag) != mac.TagSize {
		return fmt.Errorf("%w: tag has %d bytes, expected %d", ErrSignatureFormat, len(tag), mac.TagSize)
	}

	expected, err := mac.Sum(alg, key.Key[:], message)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err) //nolint: errorlint
	}

	if !mac.Equal(expected, tag) {
		return ErrInvalidSignature
	}

	return nil
}

// Sign computes a base64 encoded tag of the message.
func Sign(key SecretKey, alg MACAlgorithm, message []byte) (string, error) {
	tag, err := mac.Sum(alg, key.Key[:], message)
	if err != nil {
		return "", fmt.Errorf("cannot sign a message: %w", err)
	}

	return base64.StdEncoding.EncodeToString(tag), nil
}
