package gatelib

import "errors"

// Rejection taxonomy. Every failure of [Pipeline.Authenticate] wraps
// exactly one of these errors.
var (
	ErrSignatureFormat  = errors.New("signature is not a base64 encoded tag of correct length")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrInvalidMessage   = errors.New("message is malformed")
	ErrExpired          = errors.New("message is expired")
	ErrLongValidity     = errors.New("message expires too far in the future")
	ErrNonceReuse       = errors.New("nonce was used before")
)

// Construction errors.
var (
	ErrSecretKeyLength             = errors.New("secret key has incorrect length")
	ErrSecretKeyEmpty              = errors.New("secret key is empty")
	ErrUnknownMACAlgorithm         = errors.New("unknown mac algorithm")
	ErrMaxValidityInvalid          = errors.New("max validity should be positive")
	ErrAntiReplayCacheIsNotDefined = errors.New("anti-replay cache is not defined")
	ErrPipelineIsNotDefined        = errors.New("pipeline is not defined")
	ErrSinkIsNotDefined            = errors.New("telemetry sink is not defined")
	ErrIPBlocklistIsNotDefined     = errors.New("ip blocklist is not defined")
	ErrIPAllowlistIsNotDefined     = errors.New("ip allowlist is not defined")
	ErrEventStreamIsNotDefined     = errors.New("event stream is not defined")
	ErrLoggerIsNotDefined          = errors.New("logger is not defined")
)

var authErrors = []error{
	ErrSignatureFormat,
	ErrInvalidSignature,
	ErrInvalidMessage,
	ErrExpired,
	ErrLongValidity,
	ErrNonceReuse,
}

// AuthErrorKind returns a sentinel from the rejection taxonomy which is
// wrapped by err. If err does not belong to the taxonomy, nil is
// returned.
func AuthErrorKind(err error) error {
	for _, kind := range authErrors {
		if errors.Is(err, kind) {
			return kind
		}
	}

	return nil
}

// IsAuthError reports if err is a rejection produced by the pipeline.
func IsAuthError(err error) bool {
	return AuthErrorKind(err) != nil
}
