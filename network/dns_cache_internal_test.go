package network

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type HostCacheTestSuite struct {
	suite.Suite

	now   time.Time
	cache *hostCache
}

func (suite *HostCacheTestSuite) SetupTest() {
	suite.now = time.Unix(1600000000, 0)
	suite.cache = newHostCache(3, time.Minute, func() time.Time {
		return suite.now
	})
}

func (suite *HostCacheTestSuite) TestGetSet() {
	suite.Nil(suite.cache.Get("influx"))

	suite.cache.Set("influx", []string{"10.0.0.1"})
	suite.Equal([]string{"10.0.0.1"}, suite.cache.Get("influx"))

	metrics := suite.cache.Metrics()
	suite.Equal(1, metrics.Size)
	suite.EqualValues(1, metrics.Hits)
	suite.EqualValues(1, metrics.Misses)
}

func (suite *HostCacheTestSuite) TestExpiration() {
	suite.cache.Set("influx", []string{"10.0.0.1"})

	suite.now = suite.now.Add(59 * time.Second)
	suite.NotNil(suite.cache.Get("influx"))

	suite.now = suite.now.Add(time.Second)
	suite.Nil(suite.cache.Get("influx"))
	suite.Equal(0, suite.cache.Metrics().Size)
}

func (suite *HostCacheTestSuite) TestUpdateProlongs() {
	suite.cache.Set("influx", []string{"10.0.0.1"})

	suite.now = suite.now.Add(50 * time.Second)
	suite.cache.Set("influx", []string{"10.0.0.2"})

	suite.now = suite.now.Add(50 * time.Second)
	suite.Equal([]string{"10.0.0.2"}, suite.cache.Get("influx"))
	suite.Equal(1, suite.cache.Metrics().Size)
}

func (suite *HostCacheTestSuite) TestEviction() {
	suite.cache.Set("host1", []string{"10.0.0.1"})
	suite.cache.Set("host2", []string{"10.0.0.2"})
	suite.cache.Set("host3", []string{"10.0.0.3"})

	// host1 становится самым свежим, вытесняется host2.
	suite.NotNil(suite.cache.Get("host1"))
	suite.cache.Set("host4", []string{"10.0.0.4"})

	suite.NotNil(suite.cache.Get("host1"))
	suite.Nil(suite.cache.Get("host2"))
	suite.NotNil(suite.cache.Get("host3"))
	suite.NotNil(suite.cache.Get("host4"))
	suite.EqualValues(1, suite.cache.Metrics().Evictions)
}

func (suite *HostCacheTestSuite) TestCleanup() {
	suite.cache.Set("host1", []string{"10.0.0.1"})

	suite.now = suite.now.Add(30 * time.Second)
	suite.cache.Set("host2", []string{"10.0.0.2"})

	suite.now = suite.now.Add(40 * time.Second)
	suite.Equal(1, suite.cache.Cleanup())
	suite.Equal(1, suite.cache.Metrics().Size)
	suite.NotNil(suite.cache.Get("host2"))
}

func (suite *HostCacheTestSuite) TestStopIsIdempotent() {
	cache := newHostCacheWithCleanup(0, time.Minute)

	cache.Stop()
	cache.Stop()
}

func TestHostCache(t *testing.T) {
	t.Parallel()
	suite.Run(t, &HostCacheTestSuite{})
}
