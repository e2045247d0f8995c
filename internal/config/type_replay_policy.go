package config

import (
	"fmt"
	"strings"

	"github.com/influxgate/influxgate/antireplay"
)

const (
	TypeReplayKindGenerational = "generational"
	TypeReplayKindStableBloom  = "stable-bloom"
)

// TypeReplayKind is a backend of anti-replay cache.
type TypeReplayKind struct {
	Value string
}

func (t *TypeReplayKind) Set(value string) error {
	lowered := strings.ToLower(strings.TrimSpace(value))

	switch lowered {
	case TypeReplayKindGenerational, TypeReplayKindStableBloom:
		t.Value = lowered
	default:
		return fmt.Errorf("unknown anti-replay kind %q, expected %q or %q",
			value, TypeReplayKindGenerational, TypeReplayKindStableBloom)
	}

	return nil
}

func (t TypeReplayKind) Get(defaultValue string) string {
	if t.Value == "" {
		return defaultValue
	}

	return t.Value
}

func (t *TypeReplayKind) UnmarshalText(data []byte) error {
	return t.Set(string(data))
}

func (t TypeReplayKind) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t TypeReplayKind) String() string {
	return t.Value
}

// TypeRotationPolicy is a rotation policy of generational cache:
// schedule or idle.
type TypeRotationPolicy struct {
	Value string
}

func (t *TypeRotationPolicy) Set(value string) error {
	lowered := strings.ToLower(strings.TrimSpace(value))

	for _, policy := range []antireplay.RotationPolicy{antireplay.RotateOnSchedule, antireplay.RotateOnIdle} {
		if policy.String() == lowered {
			t.Value = lowered

			return nil
		}
	}

	return fmt.Errorf("unknown rotation policy %q", value)
}

func (t TypeRotationPolicy) Get(defaultValue antireplay.RotationPolicy) antireplay.RotationPolicy {
	switch t.Value {
	case antireplay.RotateOnSchedule.String():
		return antireplay.RotateOnSchedule
	case antireplay.RotateOnIdle.String():
		return antireplay.RotateOnIdle
	}

	return defaultValue
}

func (t *TypeRotationPolicy) UnmarshalText(data []byte) error {
	return t.Set(string(data))
}

func (t TypeRotationPolicy) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t TypeRotationPolicy) String() string {
	return t.Value
}

// TypeDuplicatePolicy defines what a generational cache does with a
// nonce found in the expiring generation: reject-seen or
// legacy-accept-expiring.
type TypeDuplicatePolicy struct {
	Value string
}

func (t *TypeDuplicatePolicy) Set(value string) error {
	lowered := strings.ToLower(strings.TrimSpace(value))

	for _, policy := range []antireplay.DuplicatePolicy{antireplay.RejectSeen, antireplay.LegacyAcceptExpiring} {
		if policy.String() == lowered {
			t.Value = lowered

			return nil
		}
	}

	return fmt.Errorf("unknown duplicate policy %q", value)
}

func (t TypeDuplicatePolicy) Get(defaultValue antireplay.DuplicatePolicy) antireplay.DuplicatePolicy {
	switch t.Value {
	case antireplay.RejectSeen.String():
		return antireplay.RejectSeen
	case antireplay.LegacyAcceptExpiring.String():
		return antireplay.LegacyAcceptExpiring
	}

	return defaultValue
}

func (t *TypeDuplicatePolicy) UnmarshalText(data []byte) error {
	return t.Set(string(data))
}

func (t TypeDuplicatePolicy) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t TypeDuplicatePolicy) String() string {
	return t.Value
}
