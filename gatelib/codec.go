package gatelib

import (
	"encoding/json"
	"fmt"
)

// DecodeEnvelope parses an authenticated message.
//
// Any structural problem (missing field, wrong type, number out of range,
// malformed ip address, trailing data) is reported as ErrInvalidMessage.
// Unknown fields are ignored.
func DecodeEnvelope(message []byte) (Envelope, error) {
	envelope := Envelope{}

	if err := json.Unmarshal(message, &envelope); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err) //nolint: errorlint
	}

	return envelope, nil
}

// EncodeEnvelope makes a compact JSON representation of the envelope.
// This is the message text which collectors sign.
func EncodeEnvelope(envelope Envelope) ([]byte, error) {
	data, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("cannot encode envelope: %w", err)
	}

	return data, nil
}
