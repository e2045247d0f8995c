// Package mac implements keyed message authentication codes which are
// used to sign telemetry assertions.
package mac

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"hash"

	"golang.org/x/crypto/blake2b"
)

// Algorithm is a name of the keyed MAC.
type Algorithm string

const (
	// HMACSHA256 is HMAC with SHA-256. This is what collectors use by
	// default.
	HMACSHA256 Algorithm = "hmac-sha256"

	// Blake2b256 is BLAKE2b-256 in keyed mode.
	Blake2b256 Algorithm = "blake2b-256"
)

// TagSize is a size of the MAC tag for all supported algorithms.
const TagSize = 32

// Valid reports if algorithm is supported.
func (a Algorithm) Valid() bool {
	switch a {
	case HMACSHA256, Blake2b256:
		return true
	}

	return false
}

// New builds a new keyed hash.
func New(alg Algorithm, key []byte) (hash.Hash, error) {
	switch alg {
	case HMACSHA256:
		return hmac.New(sha256.New, key), nil
	case Blake2b256:
		h, err := blake2b.New256(key)
		if err != nil {
			return nil, fmt.Errorf("cannot initialize blake2b: %w", err)
		}

		return h, nil
	}

	return nil, fmt.Errorf("unsupported algorithm %q", alg)
}

// Sum computes a tag of the message.
func Sum(alg Algorithm, key, message []byte) ([]byte, error) {
	h, err := New(alg, key)
	if err != nil {
		return nil, err
	}

	h.Write(message) //nolint: errcheck

	return h.Sum(nil), nil
}

// Equal compares 2 tags. Time of the comparison does not depend on
// the contents of the tags, only on their lengths.
func Equal(a, b []byte) bool {
	return hmac.Equal(a, b)
}
