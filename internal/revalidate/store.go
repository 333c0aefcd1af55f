package revalidate

import (
	"sync"
	"time"

	"github.com/launchdarkly/ccache"
	cache "github.com/patrickmn/go-cache"

	"github.com/mohsenKh75/next-patterns/interfaces"
)

// Store is the in-memory tier of a Cache.
//
// A ttl passed to Set is the time after which the entry is dropped entirely. It is unrelated to
// the entry's revalidation interval; a stale entry is still served until it is dropped. A ttl of
// zero or less means the entry is kept until it is deleted or evicted.
type Store interface {
	Get(key string) (interfaces.CacheEntry, bool)
	Set(entry interfaces.CacheEntry, ttl time.Duration)
	Delete(key string)
	Close()
}

const memoryStoreCleanupInterval = 5 * time.Minute

// foreverTTL is used for ccache, which has no notion of an entry that never expires.
const foreverTTL = 100 * 365 * 24 * time.Hour

type memoryStore struct {
	cache *cache.Cache
}

// NewMemoryStore returns an unbounded Store.
func NewMemoryStore() Store {
	return &memoryStore{cache: cache.New(cache.NoExpiration, memoryStoreCleanupInterval)}
}

func (s *memoryStore) Get(key string) (interfaces.CacheEntry, bool) {
	if data, present := s.cache.Get(key); present {
		if entry, ok := data.(interfaces.CacheEntry); ok {
			return entry, true
		}
	}
	return interfaces.CacheEntry{}, false
}

func (s *memoryStore) Set(entry interfaces.CacheEntry, ttl time.Duration) {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	s.cache.Set(entry.Key, entry, ttl)
}

func (s *memoryStore) Delete(key string) {
	s.cache.Delete(key)
}

func (s *memoryStore) Close() {
	s.cache.Flush()
}

type lruStore struct {
	cache *ccache.Cache
	lock  sync.RWMutex
}

// NewLRUStore returns a Store that holds at most capacity entries, evicting the least recently
// used ones first.
func NewLRUStore(capacity int) Store {
	return &lruStore{cache: ccache.New(ccache.Configure().MaxSize(int64(capacity)))}
}

func (s *lruStore) Get(key string) (interfaces.CacheEntry, bool) {
	var item *ccache.Item
	s.lock.RLock()
	if s.cache != nil {
		item = s.cache.Get(key)
	}
	s.lock.RUnlock()
	if item == nil || item.Expired() {
		return interfaces.CacheEntry{}, false
	}
	entry, ok := item.Value().(interfaces.CacheEntry)
	return entry, ok
}

func (s *lruStore) Set(entry interfaces.CacheEntry, ttl time.Duration) {
	if ttl <= 0 {
		ttl = foreverTTL
	}
	s.lock.RLock()
	if s.cache != nil {
		s.cache.Set(entry.Key, entry, ttl)
	}
	s.lock.RUnlock()
}

func (s *lruStore) Delete(key string) {
	s.lock.RLock()
	if s.cache != nil {
		s.cache.Delete(key)
	}
	s.lock.RUnlock()
}

// Close stops the ccache worker. Using a stopped ccache.Cache can panic, so it is dropped here and
// every other method checks for that under the lock.
func (s *lruStore) Close() {
	s.lock.Lock()
	if s.cache != nil {
		s.cache.Stop()
		s.cache = nil
	}
	s.lock.Unlock()
}
