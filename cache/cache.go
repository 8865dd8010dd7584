// ABOUTME: In-memory advisory cache for planning results with TTL expiration
// ABOUTME: Thread-safe via sync.Map; keys bind results to an environment fingerprint

package cache

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type entry struct {
	data      interface{}
	expiresAt time.Time
}

// Cache holds computed planning results so repeated requests against an
// unchanged environment snapshot skip recomputation. Caching is advisory:
// a miss just means the engine runs again.
type Cache struct {
	store sync.Map
	ttl   time.Duration
}

func New(ttl time.Duration) *Cache {
	c := &Cache{
		ttl: ttl,
	}
	go c.startCleanup()
	return c
}

// SizingKey builds a cache key binding a sizing result to the hardware
// profile, the parameter set, and the environment snapshot it was computed
// from. A changed snapshot changes the fingerprint and misses naturally.
func SizingKey(profileID, paramsDigest, fingerprint string) string {
	return fmt.Sprintf("sizing:%s:%s:%s", profileID, paramsDigest, fingerprint)
}

// AnalysisKey builds a cache key for an analysis report
func AnalysisKey(fingerprint string) string {
	return "analysis:" + fingerprint
}

func (c *Cache) Get(key string) (interface{}, bool) {
	val, ok := c.store.Load(key)
	if !ok {
		slog.Debug("Cache miss", "key", key)
		return nil, false
	}

	e := val.(entry)
	if time.Now().After(e.expiresAt) {
		c.store.Delete(key)
		slog.Debug("Cache expired", "key", key)
		return nil, false
	}

	slog.Debug("Cache hit", "key", key)
	return e.data, true
}

func (c *Cache) Set(key string, value interface{}) {
	e := entry{
		data:      value,
		expiresAt: time.Now().Add(c.ttl),
	}
	c.store.Store(key, e)
	slog.Debug("Cache set", "key", key, "ttl", c.ttl)
}

// SetWithTTL stores a value with a custom TTL
func (c *Cache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	e := entry{
		data:      value,
		expiresAt: time.Now().Add(ttl),
	}
	c.store.Store(key, e)
	slog.Debug("Cache set", "key", key, "ttl", ttl)
}

func (c *Cache) Clear(key string) {
	c.store.Delete(key)
}

func (c *Cache) startCleanup() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		c.store.Range(func(key, val interface{}) bool {
			e := val.(entry)
			if now.After(e.expiresAt) {
				c.store.Delete(key)
			}
			return true
		})
	}
}
