package gatelib

import (
	"fmt"
	"time"
)

// Pipeline authenticates assertions.
//
// It owns a secret key and an anti-replay cache. Pipeline is safe for
// concurrent use; the only synchronization point is the anti-replay
// cache.
type Pipeline struct {
	key               SecretKey
	algorithm         MACAlgorithm
	maxValidity       time.Duration
	splitLongValidity bool
	replayCache       AntiReplayCache
}

// MaxValidity returns a maximal validity of the message.
func (p *Pipeline) MaxValidity() time.Duration {
	return p.maxValidity
}

// Authenticate turns an assertion into a telemetry record.
//
// now is a current time as a duration since UNIX epoch. Stages are
// executed in a fixed order: signature, decoding, freshness, replay
// check. An error of the first failed stage is returned, it always
// wraps one of ErrSignatureFormat, ErrInvalidSignature,
// ErrInvalidMessage, ErrExpired, ErrLongValidity or ErrNonceReuse.
//
// Nonce is consumed only if all previous stages passed.
func (p *Pipeline) Authenticate(message, signature string, now time.Duration) (TelemetryRecord, error) {
	raw := []byte(message)

	if err := VerifySignature(p.key, p.algorithm, raw, signature); err != nil {
		return TelemetryRecord{}, err
	}

	envelope, err := DecodeEnvelope(raw)
	if err != nil {
		return TelemetryRecord{}, err
	}

	if err := CheckFreshness(envelope.Expires, now, p.maxValidity, p.splitLongValidity); err != nil {
		return TelemetryRecord{}, err
	}

	if !p.replayCache.TryAccept(envelope.Nonce) {
		return TelemetryRecord{}, fmt.Errorf("%w: %s", ErrNonceReuse, envelope.Nonce)
	}

	return envelope.Payload, nil
}

// ReplayCacheSize returns a number of remembered nonces if anti-replay
// cache supports it.
func (p *Pipeline) ReplayCacheSize() (current, expiring int, ok bool) {
	cache := p.replayCache

	for {
		if sizer, ok := cache.(AntiReplayCacheSizer); ok {
			current, expiring = sizer.Size()

			return current, expiring, true
		}

		wrapper, ok := cache.(AntiReplayCacheWrapper)
		if !ok {
			return 0, 0, false
		}

		cache = wrapper.Unwrap()
	}
}

// NewPipeline builds a new authentication pipeline.
func NewPipeline(opts PipelineOpts) (*Pipeline, error) {
	if err := opts.valid(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	return &Pipeline{
		key:               opts.Key,
		algorithm:         opts.getAlgorithm(),
		maxValidity:       opts.getMaxValidity(),
		splitLongValidity: opts.SplitLongValidity,
		replayCache:       opts.ReplayCache,
	}, nil
}
