package revalidate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"golang.org/x/sync/singleflight"

	"github.com/mohsenKh75/next-patterns/interfaces"
)

var _ interfaces.RevalidationCache = (*Cache)(nil)

// Loader produces the payload for a cache key.
type Loader = func(ctx context.Context) ([]byte, error)

// Cache is a stale-while-revalidate cache of serialized fetch results.
//
// A fresh hit returns the cached payload. A stale hit also returns the cached payload, and starts a
// background refresh; if the refresh fails the stale payload stays in place. A miss loads the
// payload synchronously. Loads and refreshes of the same key are coalesced with singleflight.
//
// Entries are indexed by the tags they were stored with, so that InvalidateTag can drop every
// entry derived from the same data. An invalidation also discards the result of any load of the
// same key that was already in progress.
type Cache struct {
	store      Store
	persistent interfaces.PersistentCacheStore
	requests   singleflight.Group
	refreshes  sync.WaitGroup
	tagIndex   map[string]map[string]struct{}
	keyTags    map[string][]string
	generation map[string]uint64
	loggers    ldlog.Loggers
	now        func() time.Time
	lock       sync.Mutex
}

// NewCache creates a Cache using the given in-memory store and, if it is not nil, a persistent
// store as a second tier.
//
// The Cache takes ownership of both stores, so calling Close on the Cache also closes them.
func NewCache(store Store, persistent interfaces.PersistentCacheStore, loggers ldlog.Loggers) *Cache {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Cache{
		store:      store,
		persistent: persistent,
		tagIndex:   make(map[string]map[string]struct{}),
		keyTags:    make(map[string][]string),
		generation: make(map[string]uint64),
		loggers:    loggers,
		now:        time.Now,
	}
}

// Fetch returns the payload for key, calling load as described for Cache. The revalidation
// interval and tags of a newly stored entry come from opts; if opts.Revalidate is zero or less,
// nothing is cached and load is called every time.
//
// A cached entry is stale for a caller once it is older than either its own revalidation interval
// or the caller's, so callers sharing a key with different intervals each get their own freshness.
//
// A load shared by several callers is not tied to any one of them: a caller whose ctx is done stops
// waiting and gets ctx.Err(), while the load goes on for the others.
func (c *Cache) Fetch(ctx context.Context, key string, opts interfaces.FetchOptions, load Loader) ([]byte, error) {
	if opts.Revalidate <= 0 {
		return load(ctx)
	}
	if entry, ok := c.lookup(ctx, key, opts); ok {
		if isStaleFor(entry, opts, c.now()) {
			c.refreshInBackground(key, opts, load)
		}
		return entry.Payload, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	loadCtx := context.WithoutCancel(ctx)
	resultCh := c.requests.DoChan(key, func() (interface{}, error) {
		return c.load(loadCtx, key, opts, load)
	})
	select {
	case result := <-resultCh:
		if result.Err != nil {
			return nil, result.Err
		}
		if payload, ok := result.Val.([]byte); ok { // singleflight returns the value as interface{}
			return payload, nil
		}
		return nil, fmt.Errorf("revalidation cache load returned unexpected type %T", result.Val)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Invalidate drops the entries with the given keys from both tiers.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	c.lock.Lock()
	for _, key := range keys {
		c.dropLocked(key)
	}
	c.lock.Unlock()

	if c.persistent == nil || len(keys) == 0 {
		return nil
	}
	if err := c.persistent.Delete(ctx, keys...); err != nil {
		c.loggers.Errorf("Failed to delete %d persistent cache entries: %s", len(keys), err)
		return err
	}
	return nil
}

// InvalidateTag drops every entry stored with the given tag from both tiers, and returns the keys
// that were dropped from memory.
func (c *Cache) InvalidateTag(ctx context.Context, tag string) ([]string, error) {
	c.lock.Lock()
	keys := make([]string, 0, len(c.tagIndex[tag]))
	for key := range c.tagIndex[tag] {
		keys = append(keys, key)
	}
	for _, key := range keys {
		c.dropLocked(key)
	}
	c.lock.Unlock()

	if c.loggers.IsDebugEnabled() {
		c.loggers.Debugf("Invalidated tag %q (%d entries)", tag, len(keys))
	}
	if c.persistent == nil {
		return keys, nil
	}
	if _, err := c.persistent.DeleteTag(ctx, tag); err != nil {
		c.loggers.Errorf("Failed to delete persistent cache entries for tag %q: %s", tag, err)
		return keys, err
	}
	return keys, nil
}

// WaitForRefreshes blocks until every background refresh started so far has finished.
func (c *Cache) WaitForRefreshes() {
	c.refreshes.Wait()
}

// Close waits for background refreshes and then closes both stores.
func (c *Cache) Close() error {
	c.refreshes.Wait()
	c.store.Close()
	if c.persistent != nil {
		return c.persistent.Close()
	}
	return nil
}

func (c *Cache) lookup(ctx context.Context, key string, opts interfaces.FetchOptions) (interfaces.CacheEntry, bool) {
	if entry, ok := c.store.Get(key); ok {
		return entry, true
	}
	if c.persistent == nil {
		return interfaces.CacheEntry{}, false
	}
	entry, found, err := c.persistent.Get(ctx, key)
	if err != nil {
		c.loggers.Warnf("Persistent cache lookup of %s failed, loading instead: %s", key, err)
		return interfaces.CacheEntry{}, false
	}
	if !found {
		return interfaces.CacheEntry{}, false
	}
	ttl := expireAfter(entry.Revalidate, opts.CacheLife)
	if ttl > 0 {
		remaining := entry.StoredAt.Add(ttl).Sub(c.now())
		if remaining <= 0 {
			if c.loggers.IsDebugEnabled() {
				c.loggers.Debugf("Persistent cache entry %s has expired", key)
			}
			if err := c.persistent.Delete(ctx, key); err != nil {
				c.loggers.Warnf("Failed to delete expired persistent cache entry %s: %s", key, err)
			}
			return interfaces.CacheEntry{}, false
		}
		ttl = remaining
	}
	c.lock.Lock()
	c.indexLocked(entry)
	c.store.Set(entry, ttl)
	c.lock.Unlock()
	return entry, true
}

func (c *Cache) load(ctx context.Context, key string, opts interfaces.FetchOptions, load Loader) ([]byte, error) {
	c.lock.Lock()
	gen := c.generation[key]
	c.lock.Unlock()

	payload, err := load(ctx)
	if err != nil {
		return nil, err
	}
	entry := interfaces.CacheEntry{
		Key:        key,
		Payload:    payload,
		Tags:       append([]string(nil), opts.Tags...),
		StoredAt:   c.now(),
		Revalidate: opts.Revalidate,
	}

	c.lock.Lock()
	defer c.lock.Unlock()
	if c.generation[key] != gen {
		// invalidated while loading; the caller still gets the result but it is not stored
		return payload, nil
	}
	c.indexLocked(entry)
	c.store.Set(entry, expireAfter(entry.Revalidate, opts.CacheLife))
	// both tiers are written under the lock, so an invalidation is applied after both or neither
	if c.persistent != nil {
		if err := c.persistent.Set(ctx, entry); err != nil {
			c.loggers.Warnf("Failed to store %s in persistent cache: %s", key, err)
		}
	}
	return payload, nil
}

func (c *Cache) refreshInBackground(key string, opts interfaces.FetchOptions, load Loader) {
	c.refreshes.Add(1)
	go func() {
		defer c.refreshes.Done()
		result := <-c.requests.DoChan(key, func() (interface{}, error) {
			return c.load(context.Background(), key, opts, load)
		})
		if result.Err != nil {
			c.loggers.Warnf("Revalidation of %s failed, keeping stale entry: %s", key, result.Err)
		}
	}()
}

func (c *Cache) indexLocked(entry interfaces.CacheEntry) {
	c.unindexLocked(entry.Key)
	for _, tag := range entry.Tags {
		keys := c.tagIndex[tag]
		if keys == nil {
			keys = make(map[string]struct{})
			c.tagIndex[tag] = keys
		}
		keys[entry.Key] = struct{}{}
	}
	if len(entry.Tags) > 0 {
		c.keyTags[entry.Key] = entry.Tags
	}
}

func (c *Cache) unindexLocked(key string) {
	for _, tag := range c.keyTags[key] {
		delete(c.tagIndex[tag], key)
		if len(c.tagIndex[tag]) == 0 {
			delete(c.tagIndex, tag)
		}
	}
	delete(c.keyTags, key)
}

func (c *Cache) dropLocked(key string) {
	c.unindexLocked(key)
	c.store.Delete(key)
	c.generation[key]++
}

func isStaleFor(entry interfaces.CacheEntry, opts interfaces.FetchOptions, now time.Time) bool {
	return entry.IsStale(now) || now.Sub(entry.StoredAt) >= opts.Revalidate
}

// expireAfter returns the time after which an entry is dropped: the expire interval of the cache
// life profile, but never less than the revalidation interval. Without a profile it is zero, so
// that stale entries are kept until they are replaced or invalidated.
func expireAfter(revalidate time.Duration, unit interfaces.CacheLifeUnit) time.Duration {
	profile, ok := interfaces.ProfileFor(unit)
	if !ok {
		return 0
	}
	if profile.Expire < revalidate {
		return revalidate
	}
	return profile.Expire
}
