// Package stats contains implementations of [events.Observer] which
// collect statistics of the gate.
//
// There are 2 implementations: one for Prometheus and one for StatsD.
// Both of them track requests in flight, outcomes of authentication,
// health of the storage and a size of the anti-replay cache.
package stats

const (
	// DefaultMetricPrefix defines a namespace for Prometheus metrics.
	DefaultMetricPrefix = "influxgate"

	// DefaultStatsdMetricPrefix defines a prefix for StatsD metrics.
	DefaultStatsdMetricPrefix = "influxgate."

	// DefaultStatsdTagFormat defines a default tag format of StatsD
	// client.
	DefaultStatsdTagFormat = "influxdb"
)

const (
	MetricRequestsInFlight = "requests_in_flight"
	MetricRequests         = "requests"
	MetricRequestDuration  = "request_duration_seconds"

	MetricAuthenticated = "authenticated"
	MetricAuthRejected  = "auth_rejected"
	MetricReplayAttacks = "replay_attacks"
	MetricIPBlocklisted = "ip_blocklisted"
	MetricRateLimited   = "rate_limited"

	MetricSinkRecords       = "sink_records"
	MetricSinkWriteDuration = "sink_write_duration_seconds"
	MetricSinkDropped       = "sink_dropped"

	MetricReplayCacheSize = "replay_cache_size"

	TagIPFamily     = "ip_family"
	TagIPFamilyIPv4 = "ipv4"
	TagIPFamilyIPv6 = "ipv6"

	TagStatus = "status"
	TagName   = "name"
	TagReason = "reason"

	TagIPList      = "ip_list"
	TagIPListBlock = "blocklist"
	TagIPListAllow = "allowlist"

	TagSinkResult       = "result"
	TagSinkResultOK     = "ok"
	TagSinkResultFailed = "failed"

	TagGeneration         = "generation"
	TagGenerationCurrent  = "current"
	TagGenerationExpiring = "expiring"

	TagReasonSignatureFormat  = "signature_format"
	TagReasonInvalidSignature = "invalid_signature"
	TagReasonInvalidMessage   = "invalid_message"
	TagReasonExpired          = "expired"
	TagReasonLongValidity     = "long_validity"
	TagReasonNonceReuse       = "nonce_reuse"
	TagReasonUnknown          = "unknown"
)
