package pagecache

import (
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache holds raw schedule pages keyed by (group, week) so that
// repeated ingestion runs inside the freshness window never touch
// the origin. It is bounded both by entry count (least recently
// used evicted first) and by a TTL after which an entry is treated
// as absent. Safe for concurrent use; two goroutines observing a
// miss for the same key may both fetch, which is harmless.
type Cache struct {
	lru *expirable.LRU[string, []byte]
}

func New(maxEntries int, ttl time.Duration) *Cache {
	return &Cache{
		lru: expirable.NewLRU[string, []byte](maxEntries, nil, ttl),
	}
}

func key(group string, week int) string {
	return fmt.Sprintf("%s:%d", group, week)
}

func (c *Cache) Get(group string, week int) ([]byte, bool) {
	return c.lru.Get(key(group, week))
}

func (c *Cache) Put(group string, week int, page []byte) {
	c.lru.Add(key(group, week), page)
}

func (c *Cache) Len() int {
	return c.lru.Len()
}
