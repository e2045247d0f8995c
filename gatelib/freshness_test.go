package gatelib_test

import (
	"math"
	"testing"
	"time"

	"github.com/influxgate/influxgate/gatelib"
	"github.com/stretchr/testify/suite"
)

type FreshnessTestSuite struct {
	suite.Suite
}

func (suite *FreshnessTestSuite) TestBoundaries() {
	now := 1000 * time.Second
	window := time.Minute

	testData := map[string]struct {
		expires time.Duration
		err     error
	}{
		"expires now":         {now, nil},
		"expired":             {now - time.Nanosecond, gatelib.ErrExpired},
		"max validity":        {now + window, nil},
		"beyond max validity": {now + window + time.Nanosecond, gatelib.ErrExpired},
		"in the middle":       {now + window/2, nil},
		"long ago":            {0, gatelib.ErrExpired},
	}

	for name, v := range testData {
		value := v

		suite.Run(name, func() {
			err := gatelib.CheckFreshness(value.expires, now, window, false)

			if value.err == nil {
				suite.NoError(err)
			} else {
				suite.ErrorIs(err, value.err)
			}
		})
	}
}

func (suite *FreshnessTestSuite) TestSplitLongValidity() {
	now := 1000 * time.Second

	err := gatelib.CheckFreshness(now+2*time.Minute, now, time.Minute, true)
	suite.ErrorIs(err, gatelib.ErrLongValidity)
	suite.NotErrorIs(err, gatelib.ErrExpired)

	err = gatelib.CheckFreshness(now-time.Second, now, time.Minute, true)
	suite.ErrorIs(err, gatelib.ErrExpired)
}

func (suite *FreshnessTestSuite) TestSaturation() {
	maxDuration := time.Duration(math.MaxInt64)

	suite.NoError(gatelib.CheckFreshness(maxDuration, maxDuration-time.Second, time.Minute, false))
	suite.ErrorIs(gatelib.CheckFreshness(maxDuration, 0, time.Minute, false), gatelib.ErrExpired)
}

func TestFreshness(t *testing.T) {
	t.Parallel()
	suite.Run(t, &FreshnessTestSuite{})
}
