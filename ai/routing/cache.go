package routing

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"

	"github.com/hrygo/shopdesk/ai/cache"
)

const routerCacheType = "router"

// CacheEntry represents a cached routing result.
type CacheEntry struct {
	Intent     Intent
	Confidence float32
	Source     string // "rule" or the name of a custom classifier
}

// RouterCache provides LRU caching for routing decisions.
// Batch runs replay the same utterances often; a hit skips the classifier entirely.
type RouterCache struct {
	cache    *cache.LRUCache[string, CacheEntry]
	observer CacheObserver

	statsMu   sync.Mutex
	hitCount  int64
	missCount int64
}

// CacheConfig contains configuration for RouterCache.
type CacheConfig struct {
	Capacity   int           // Maximum number of entries (default: 500)
	DefaultTTL time.Duration // Entry lifetime (default: 5min)
	Observer   CacheObserver // Optional hit/miss sink
}

// NewRouterCache creates a new router cache with specified configuration.
func NewRouterCache(cfg CacheConfig) *RouterCache {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 500
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = 5 * time.Minute
	}
	return &RouterCache{
		cache:    cache.NewLRUCache[string, CacheEntry](cfg.Capacity, cfg.DefaultTTL),
		observer: cfg.Observer,
	}
}

// Get retrieves a cached routing result.
func (c *RouterCache) Get(input string) (CacheEntry, bool) {
	entry, found := c.cache.Get(hashKey(input))
	c.statsMu.Lock()
	if found {
		c.hitCount++
	} else {
		c.missCount++
	}
	c.statsMu.Unlock()

	if c.observer != nil {
		if found {
			c.observer.RecordCacheHit(routerCacheType)
		} else {
			c.observer.RecordCacheMiss(routerCacheType)
		}
	}
	if found {
		slog.Debug("router cache hit", "input", truncate(input, 50), "intent", entry.Intent, "source", entry.Source)
	}
	return entry, found
}

// Set stores a routing result in the cache.
func (c *RouterCache) Set(input string, entry CacheEntry) {
	c.cache.Set(hashKey(input), entry, 0)
}

// Clear removes all entries and resets the counters.
func (c *RouterCache) Clear() {
	c.cache.Clear()
	c.statsMu.Lock()
	c.hitCount, c.missCount = 0, 0
	c.statsMu.Unlock()
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits     int64
	Misses   int64
	HitRate  float64
	Size     int
	Capacity int
}

// GetStats returns current cache statistics.
func (c *RouterCache) GetStats() Stats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()

	total := c.hitCount + c.missCount
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(c.hitCount) / float64(total)
	}
	return Stats{
		Hits:     c.hitCount,
		Misses:   c.missCount,
		HitRate:  hitRate,
		Size:     c.cache.Size(),
		Capacity: c.cache.Capacity(),
	}
}

// hashKey keys entries by exact input text; 64 bits of SHA-256 is plenty here.
func hashKey(input string) string {
	hash := sha256.Sum256([]byte(input))
	return "route:" + hex.EncodeToString(hash[:8])
}
