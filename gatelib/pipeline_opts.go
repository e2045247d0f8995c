package gatelib

import "time"

// PipelineOpts is a context of authentication pipeline. It is built once
// on startup and lives as long as the service.
type PipelineOpts struct {
	// Key is a shared secret key.
	//
	// This is a mandatory setting.
	Key SecretKey

	// Algorithm is a keyed MAC which signs messages.
	//
	// This is an optional setting. Default is hmac-sha256.
	Algorithm MACAlgorithm

	// MaxValidity is a maximal time range between now and an expiry of
	// the message. Messages which claim to be valid for longer are
	// rejected.
	//
	// This is an optional setting. Default is 1 minute.
	MaxValidity time.Duration

	// ReplayCache is an instance of the anti-replay cache. Pipeline owns
	// it: nobody else should call it after the pipeline is built.
	//
	// This is a mandatory setting.
	ReplayCache AntiReplayCache

	// SplitLongValidity defines which error is returned for messages
	// which expire too far in the future. If false, such messages are
	// rejected with ErrExpired, otherwise ErrLongValidity is used.
	//
	// This is an optional setting.
	SplitLongValidity bool
}

func (p PipelineOpts) valid() error {
	switch {
	case !p.Key.Valid():
		return ErrSecretKeyEmpty
	case p.ReplayCache == nil:
		return ErrAntiReplayCacheIsNotDefined
	case p.MaxValidity < 0:
		return ErrMaxValidityInvalid
	case p.Algorithm != "" && !p.Algorithm.Valid():
		return ErrUnknownMACAlgorithm
	}

	return nil
}

func (p PipelineOpts) getAlgorithm() MACAlgorithm {
	if p.Algorithm == "" {
		return DefaultMACAlgorithm
	}

	return p.Algorithm
}

func (p PipelineOpts) getMaxValidity() time.Duration {
	if p.MaxValidity == 0 {
		return DefaultMaxValidity
	}

	return p.MaxValidity
}
