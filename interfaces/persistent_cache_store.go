package interfaces

import (
	"context"
	"io"
	"time"
)

// CacheEntry is one cached fetch result as it is kept by a revalidation cache.
type CacheEntry struct {
	// Key identifies the entry, normally the URL or path of the cached resource.
	Key string
	// Payload is the serialized result.
	Payload []byte
	// Tags are the invalidation tags the entry was stored with.
	Tags []string
	// StoredAt is the time the payload was loaded.
	StoredAt time.Time
	// Revalidate is the interval after which the entry is stale.
	Revalidate time.Duration
}

// IsStale returns true if the entry is older than its revalidation interval at the given time.
func (e CacheEntry) IsStale(now time.Time) bool {
	return now.Sub(e.StoredAt) >= e.Revalidate
}

// HasTag returns true if the entry was stored with the given tag.
func (e CacheEntry) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// PersistentCacheStore is an interface for a durable second tier of the revalidation cache, so that
// cached fetch results survive a process restart.
//
// Implementations do not need to do any caching of their own or any freshness checks; those are
// done by the revalidation cache in front of them. All methods may be called concurrently.
type PersistentCacheStore interface {
	io.Closer

	// Get returns the entry for a key. The second return value is false if there is none.
	Get(ctx context.Context, key string) (CacheEntry, bool, error)

	// Set stores an entry, replacing any existing entry with the same key.
	Set(ctx context.Context, entry CacheEntry) error

	// Delete removes the entries with the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// DeleteTag removes every entry stored with the given tag and returns their keys.
	DeleteTag(ctx context.Context, tag string) ([]string, error)
}
