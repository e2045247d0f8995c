package gatelib

import (
	"fmt"
	"math"
	"time"
)

// CheckFreshness validates an expiry of the message.
//
// Both now and expires are durations since UNIX epoch. A message is
// fresh if now <= expires <= now + maxValidity. Both ends are inclusive.
//
// A message that expires later than now + maxValidity is an implausibly
// long-lived assertion. It is reported as ErrExpired unless
// splitLongValidity is set, then ErrLongValidity is used.
func CheckFreshness(expires, now, maxValidity time.Duration, splitLongValidity bool) error {
	if now > expires {
		return fmt.Errorf("%w: expired %v ago", ErrExpired, now-expires)
	}

	if expires > saturatingAdd(now, maxValidity) {
		if splitLongValidity {
			return fmt.Errorf("%w: valid for %v, max is %v", ErrLongValidity, expires-now, maxValidity)
		}

		return fmt.Errorf("%w: valid for %v, max is %v", ErrExpired, expires-now, maxValidity)
	}

	return nil
}

func saturatingAdd(a, b time.Duration) time.Duration {
	if b > 0 && a > time.Duration(math.MaxInt64)-b {
		return time.Duration(math.MaxInt64)
	}

	return a + b
}
