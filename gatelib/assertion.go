package gatelib

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"
)

// Assertion is a body of /update request: a message and its signature.
type Assertion struct {
	Message string `json:"message"`
	Sig     string `json:"sig"`
}

// NewAssertion signs an envelope the same way collectors do. If nonce of
// the envelope is zero, a random one is generated.
func NewAssertion(key SecretKey, alg MACAlgorithm, envelope Envelope) (Assertion, error) {
	if envelope.Nonce.IsZero() {
		envelope.Nonce = RandomNonce()
	}

	message, err := EncodeEnvelope(envelope)
	if err != nil {
		return Assertion{}, err
	}

	sig, err := Sign(key, alg, message)
	if err != nil {
		return Assertion{}, err
	}

	return Assertion{
		Message: string(message),
		Sig:     sig,
	}, nil
}

// NewEnvelope wraps a record into envelope which expires after validFor
// from now.
func NewEnvelope(record TelemetryRecord, now time.Time, validFor time.Duration) Envelope {
	return Envelope{
		Nonce:   RandomNonce(),
		Expires: time.Duration(now.Add(validFor).UnixNano()),
		Payload: record,
	}
}

// RandomNonce generates 128 random bits.
func RandomNonce() Uint128 {
	buf := [16]byte{}

	if _, err := rand.Read(buf[:]); err != nil {
		panic(fmt.Sprintf("cannot read random bytes: %v", err))
	}

	return NewUint128(binary.BigEndian.Uint64(buf[:8]), binary.BigEndian.Uint64(buf[8:]))
}
