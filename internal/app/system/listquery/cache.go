package listquery

import (
	"time"

	"github.com/golang/groupcache/lru"
)

// resultCache holds recent pages keyed by the full parameter tuple.
// It is not safe for concurrent use; the controller guards it.
type resultCache[T any] struct {
	ttl     time.Duration
	entries *lru.Cache
}

type cacheEntry[T any] struct {
	page     Page[T]
	storedAt time.Time
}

func newResultCache[T any](ttl time.Duration, size int) *resultCache[T] {
	if ttl <= 0 {
		return nil
	}
	return &resultCache[T]{ttl: ttl, entries: lru.New(size)}
}

// get returns the cached page for key and whether it is still fresh.
// A stale page is still returned so it can be shown while revalidating.
func (c *resultCache[T]) get(key string, now time.Time) (page Page[T], fresh, ok bool) {
	if c == nil {
		return Page[T]{}, false, false
	}
	v, found := c.entries.Get(key)
	if !found {
		return Page[T]{}, false, false
	}
	e := v.(cacheEntry[T])
	return e.page, now.Sub(e.storedAt) < c.ttl, true
}

func (c *resultCache[T]) put(key string, page Page[T], now time.Time) {
	if c == nil {
		return
	}
	c.entries.Add(key, cacheEntry[T]{page: page, storedAt: now})
}

func (c *resultCache[T]) clear() {
	if c == nil {
		return
	}
	c.entries.Clear()
}
