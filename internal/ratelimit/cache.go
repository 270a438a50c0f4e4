package ratelimit

import (
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/kridt/bets-api-ev-calc-sub002/internal/metrics"
	"github.com/kridt/bets-api-ev-calc-sub002/internal/provider"
)

// ResultCache caches finished-event results keyed by external event id,
// so repeat verifications inside the TTL window never hit the network.
type ResultCache struct {
	cache     *cache.Cache
	ttl       time.Duration
	mu        sync.RWMutex
	hitCount  uint64
	missCount uint64
}

// NewResultCache creates a cache with the given TTL
func NewResultCache(ttl time.Duration) *ResultCache {
	return &ResultCache{
		cache: cache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

// Get retrieves a cached result. Expired entries are evicted on read; the
// lookup-and-evict sequence is atomic per key inside go-cache.
func (rc *ResultCache) Get(eventID string) *provider.EventResult {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if cached, found := rc.cache.Get(eventID); found {
		if result, ok := cached.(*provider.EventResult); ok {
			rc.hitCount++
			rc.updateMetrics()
			return result
		}
	}

	rc.missCount++
	rc.updateMetrics()
	return nil
}

// Set stores a result under the event id for the configured TTL
func (rc *ResultCache) Set(eventID string, result *provider.EventResult) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.cache.Set(eventID, result, rc.ttl)
}

// Clear flushes the entire cache
func (rc *ResultCache) Clear() {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.cache.Flush()
	rc.hitCount = 0
	rc.missCount = 0
}

// Stats returns cache statistics
func (rc *ResultCache) Stats() (hits, misses uint64, ratio float64) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.statsLocked()
}

func (rc *ResultCache) statsLocked() (hits, misses uint64, ratio float64) {
	hits = rc.hitCount
	misses = rc.missCount
	total := hits + misses
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of cached entries
func (rc *ResultCache) ItemCount() int {
	return rc.cache.ItemCount()
}

func (rc *ResultCache) updateMetrics() {
	_, _, ratio := rc.statsLocked()
	metrics.ResultCacheHitRatio.Set(ratio)
}
