package antireplay

import (
	"sync"

	"github.com/OneOfOne/xxhash"
	"github.com/influxgate/influxgate/gatelib"
	boom "github.com/tylertreat/BoomFilters"
)

type stableBloomFilter struct {
	filter *boom.StableBloomFilter
	mutex  sync.Mutex
}

func (s *stableBloomFilter) TryAccept(nonce gatelib.Uint128) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return !s.filter.TestAndAdd(nonce.Bytes())
}

// NewStableBloomFilter returns an implementation of AntiReplayCache based
// on stable bloom filter.
//
// byteSize is a memory limit of the filter, errorRate is a desired false
// positive rate. If byteSize is 0, DefaultStableBloomFilterMaxSize is
// used. If errorRate is not positive, DefaultStableBloomFilterErrorRate
// is used.
func NewStableBloomFilter(byteSize uint, errorRate float64) gatelib.AntiReplayCache {
	if byteSize == 0 {
		byteSize = DefaultStableBloomFilterMaxSize
	}

	if errorRate <= 0 {
		errorRate = DefaultStableBloomFilterErrorRate
	}

	sf := boom.NewDefaultStableBloomFilter(byteSize*8, errorRate) //nolint: gomnd
	sf.SetHash(xxhash.New64())

	return &stableBloomFilter{
		filter: sf,
	}
}
