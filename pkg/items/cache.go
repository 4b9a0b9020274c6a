package items

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"

	"simpleapp/itemsvc/pkg/config"
)

// CacheName labels the item cache in metrics.
const CacheName = "items"

// CacheRecorder counts cache lookups. *metrics.Collector implements it.
type CacheRecorder interface {
	RecordCacheHit(cacheName string)
	RecordCacheMiss(cacheName string)
}

// Cache is a read cache of items keyed by ID. Entries expire after the
// configured TTL and are dropped on update and delete.
//
// A nil *Cache is a valid cache that never holds anything.
type Cache struct {
	cache    *ristretto.Cache
	ttl      time.Duration
	recorder CacheRecorder
}

// NewCache creates the item cache. It returns nil when caching is disabled.
func NewCache(cfg config.CacheConfig, recorder CacheRecorder) (*Cache, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	maxItems := cfg.MaxItems
	if maxItems <= 0 {
		maxItems = config.DefaultCacheMaxItems
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = config.DefaultCacheTTL
	}

	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxItems * 10,
		MaxCost:     maxItems,
		BufferItems: 64,

		// Every entry costs 1, so MaxCost counts items.
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create item cache: %w", err)
	}

	return &Cache{cache: c, ttl: ttl, recorder: recorder}, nil
}

func cacheKey(id int64) string {
	return fmt.Sprintf("item:%d", id)
}

// Get returns a copy of the cached item.
func (c *Cache) Get(id int64) (*Item, bool) {
	if c == nil {
		return nil, false
	}

	value, found := c.cache.Get(cacheKey(id))
	item, ok := value.(Item)
	if !found || !ok {
		c.record(false)
		return nil, false
	}
	c.record(true)
	return &item, true
}

// Set stores a copy of item. The write is visible to Get once Set returns.
func (c *Cache) Set(item *Item) {
	if c == nil || item == nil {
		return
	}
	if c.cache.SetWithTTL(cacheKey(item.ID), *item, 1, c.ttl) {
		c.cache.Wait()
	}
}

// Invalidate drops the entry for id.
func (c *Cache) Invalidate(id int64) {
	if c == nil {
		return
	}
	c.cache.Del(cacheKey(id))
}

const probeKey = "health:probe"

// Ping writes and reads back a probe entry. A nil cache always answers.
func (c *Cache) Ping() error {
	if c == nil {
		return nil
	}
	if !c.cache.SetWithTTL(probeKey, true, 1, time.Minute) {
		return errors.New("item cache rejected the probe entry")
	}
	c.cache.Wait()
	if _, ok := c.cache.Get(probeKey); !ok {
		return errors.New("item cache lost the probe entry")
	}
	return nil
}

// Close stops the cache's background goroutines.
func (c *Cache) Close() {
	if c == nil {
		return
	}
	c.cache.Close()
}

func (c *Cache) record(hit bool) {
	if c.recorder == nil {
		return
	}
	if hit {
		c.recorder.RecordCacheHit(CacheName)
	} else {
		c.recorder.RecordCacheMiss(CacheName)
	}
}
