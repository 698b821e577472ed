package reconcile

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Lookup maps folded reference names (e.g. document type names) to their ids.
type Lookup map[string]string

// Names returns the folded names of the lookup.
func (l Lookup) Names() []string {
	names := make([]string, 0, len(l))
	for n := range l {
		names = append(names, n)
	}
	return names
}

// ID returns the id of the reference whose name folds to the same key as name.
func (l Lookup) ID(name string) (string, bool) {
	id, ok := l[FoldKey(name)]
	return id, ok
}

// LookupCache holds reference data used by foreign-key rules.
type LookupCache struct {
	// Values is the cached lookup.
	Values Lookup

	// Built is the timestamp when this cache was built.
	Built time.Time

	// TTL is the time-to-live for this cache.
	TTL time.Duration
}

// IsExpired returns true if this cache has expired based on its TTL.
func (c *LookupCache) IsExpired() bool {
	if c.TTL == 0 {
		return true // No caching
	}
	return time.Since(c.Built) > c.TTL
}

// cacheStore holds all lookup caches keyed by reference name and tenant.
type cacheStore struct {
	mu     sync.RWMutex
	caches map[string]*LookupCache
	sf     singleflight.Group
}

// globalCacheStore is the singleton cache store for reference lookups.
var globalCacheStore = &cacheStore{
	caches: make(map[string]*LookupCache),
}

// GetOrLoadLookup retrieves a lookup from the store, or loads it if it doesn't
// exist or has expired. Uses singleflight to prevent cache stampedes.
func GetOrLoadLookup(ctx context.Context, key string, ttl time.Duration, load func(context.Context) (Lookup, error)) (Lookup, error) {
	// Fast path: check if cache exists and is fresh
	globalCacheStore.mu.RLock()
	cache, exists := globalCacheStore.caches[key]
	globalCacheStore.mu.RUnlock()

	if exists && !cache.IsExpired() {
		return cache.Values, nil
	}

	// Slow path: load using singleflight to prevent stampedes
	result, err, _ := globalCacheStore.sf.Do(key, func() (interface{}, error) {
		globalCacheStore.mu.RLock()
		cache, exists := globalCacheStore.caches[key]
		globalCacheStore.mu.RUnlock()

		if exists && !cache.IsExpired() {
			return cache.Values, nil
		}

		values, err := load(ctx)
		if err != nil {
			return nil, err
		}

		globalCacheStore.mu.Lock()
		globalCacheStore.caches[key] = &LookupCache{Values: values, Built: time.Now(), TTL: ttl}
		globalCacheStore.mu.Unlock()

		return values, nil
	})

	if err != nil {
		return nil, err
	}

	return result.(Lookup), nil
}

// InvalidateLookup removes the lookup stored under key.
// This is useful for testing or after the reference data changed.
func InvalidateLookup(key string) {
	globalCacheStore.mu.Lock()
	delete(globalCacheStore.caches, key)
	globalCacheStore.mu.Unlock()
}
