package client

import (
	"context"
	"time"
)

// cache defaults
const (
	DefaultStaleTime = 5 * time.Minute
	DefaultRetry     = 1
)

type cacheEntry struct {
	value     interface{}
	fetchedAt time.Time
}

// QueryCache memoizes fetched data by key. It is not safe for concurrent use.
type QueryCache struct {
	StaleTime time.Duration
	// Retry is the number of extra attempts after a failed fetch.
	Retry int

	entries map[string]cacheEntry
	now     func() time.Time // mockable
}

func NewQueryCache() *QueryCache {
	return &QueryCache{
		StaleTime: DefaultStaleTime,
		Retry:     DefaultRetry,
		entries:   make(map[string]cacheEntry),
		now:       time.Now,
	}
}

// Fetch returns the cached value of key while it is fresh, otherwise it calls fetch and caches the result.
// Failed fetches are not cached.
func (c *QueryCache) Fetch(ctx context.Context, key string, fetch func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	if e, ok := c.entries[key]; ok && c.now().Sub(e.fetchedAt) < c.StaleTime {
		return e.value, nil
	}

	var (
		val interface{}
		err error
	)
	for attempt := 0; attempt <= c.Retry; attempt++ {
		if val, err = fetch(ctx); err == nil {
			break
		}
		if ctx.Err() != nil {
			return nil, err
		}
	}
	if err != nil {
		return nil, err
	}
	c.entries[key] = cacheEntry{value: val, fetchedAt: c.now()}
	return val, nil
}

// Query is a typed Fetch.
func Query[T any](ctx context.Context, c *QueryCache, key string, fetch func(ctx context.Context) (T, error)) (T, error) {
	val, err := c.Fetch(ctx, key, func(ctx context.Context) (interface{}, error) { return fetch(ctx) })
	if err != nil {
		var zero T
		return zero, err
	}
	v, _ := val.(T)
	return v, nil
}

// Invalidate marks the entries of keys stale. Without keys, every entry is dropped.
func (c *QueryCache) Invalidate(keys ...string) {
	if len(keys) == 0 {
		c.entries = make(map[string]cacheEntry)
		return
	}
	for _, key := range keys {
		delete(c.entries, key)
	}
}
