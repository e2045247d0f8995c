package network

import (
	"container/list"
	"sync"
	"time"
)

type hostCacheEntry struct {
	key       string
	ips       []string
	expiresAt time.Time
}

// hostCache is a LRU cache of resolved names. Each entry lives for a
// fixed TTL: neither system resolver nor our DoH client expose real TTL
// values in a way worth trusting.
type hostCache struct {
	mutex    sync.Mutex
	maxSize  int
	ttl      time.Duration
	entries  map[string]*list.Element
	lru      *list.List
	now      func() time.Time
	stopChan chan struct{}
	stopOnce sync.Once

	hits      uint64
	misses    uint64
	evictions uint64
}

type hostCacheMetrics struct {
	Size      int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

func (h *hostCache) Get(key string) []string {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	elem, ok := h.entries[key]
	if !ok {
		h.misses++

		return nil
	}

	entry := elem.Value.(*hostCacheEntry) //nolint: forcetypeassert

	if !h.now().Before(entry.expiresAt) {
		h.lru.Remove(elem)
		delete(h.entries, key)
		h.misses++

		return nil
	}

	h.lru.MoveToFront(elem)
	h.hits++

	return entry.ips
}

func (h *hostCache) Set(key string, ips []string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	expiresAt := h.now().Add(h.ttl)

	if elem, ok := h.entries[key]; ok {
		entry := elem.Value.(*hostCacheEntry) //nolint: forcetypeassert
		entry.ips = ips
		entry.expiresAt = expiresAt

		h.lru.MoveToFront(elem)

		return
	}

	h.entries[key] = h.lru.PushFront(&hostCacheEntry{
		key:       key,
		ips:       ips,
		expiresAt: expiresAt,
	})

	if h.lru.Len() > h.maxSize {
		oldest := h.lru.Back()
		h.lru.Remove(oldest)
		delete(h.entries, oldest.Value.(*hostCacheEntry).key) //nolint: forcetypeassert
		h.evictions++
	}
}

// Cleanup removes expired entries and returns how many were removed.
func (h *hostCache) Cleanup() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	now := h.now()
	removed := 0

	for elem := h.lru.Front(); elem != nil; {
		next := elem.Next()
		entry := elem.Value.(*hostCacheEntry) //nolint: forcetypeassert

		if !now.Before(entry.expiresAt) {
			h.lru.Remove(elem)
			delete(h.entries, entry.key)
			removed++
		}

		elem = next
	}

	return removed
}

func (h *hostCache) Metrics() hostCacheMetrics {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	return hostCacheMetrics{
		Size:      h.lru.Len(),
		Hits:      h.hits,
		Misses:    h.misses,
		Evictions: h.evictions,
	}
}

func (h *hostCache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stopChan:
			return
		case <-ticker.C:
			h.Cleanup()
		}
	}
}

func (h *hostCache) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopChan)
	})
}

func newHostCache(maxSize int, ttl time.Duration, now func() time.Time) *hostCache {
	if maxSize <= 0 {
		maxSize = defaultDNSCacheSize
	}

	return &hostCache{
		maxSize:  maxSize,
		ttl:      ttl,
		entries:  make(map[string]*list.Element, maxSize),
		lru:      list.New(),
		now:      now,
		stopChan: make(chan struct{}),
	}
}

// newHostCacheWithCleanup starts a background goroutine which drops
// expired entries. Call Stop to terminate it.
func newHostCacheWithCleanup(maxSize int, ttl time.Duration) *hostCache {
	cache := newHostCache(maxSize, ttl, time.Now)

	go cache.cleanupLoop(defaultDNSCacheCleanup)

	return cache
}
