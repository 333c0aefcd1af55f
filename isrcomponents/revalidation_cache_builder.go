package isrcomponents

import (
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/mohsenKh75/next-patterns/interfaces"
	"github.com/mohsenKh75/next-patterns/internal/revalidate"
)

// RevalidationCacheBuilder is a configurable factory for the revalidation cache.
//
//	cache, err := isrcomponents.RevalidationCache().
//	    Capacity(1000).
//	    Persistent(isrsqlite.CacheStore().FilePath("cache.db")).
//	    Build(logging)
type RevalidationCacheBuilder struct {
	capacity          int
	persistentFactory interfaces.PersistentCacheStoreFactory
}

// RevalidationCache returns a configuration builder for the revalidation cache.
//
// The default is an unbounded in-memory cache with no persistent tier.
func RevalidationCache() *RevalidationCacheBuilder {
	return &RevalidationCacheBuilder{}
}

// Capacity sets the maximum number of entries kept in memory. When it is set, the least recently
// used entries are evicted first. Zero or less means unbounded, which is the default.
func (b *RevalidationCacheBuilder) Capacity(capacity int) *RevalidationCacheBuilder {
	if b != nil {
		b.capacity = capacity
	}
	return b
}

// Persistent adds a persistent second tier, such as isrsqlite.CacheStore(). Entries missing from
// memory are looked up there before being loaded, and every loaded entry is written there.
func (b *RevalidationCacheBuilder) Persistent(factory interfaces.PersistentCacheStoreFactory) *RevalidationCacheBuilder {
	if b != nil {
		b.persistentFactory = factory
	}
	return b
}

// Build creates the configured cache. It fails only if the persistent store cannot be created.
func (b *RevalidationCacheBuilder) Build(logging interfaces.LoggingConfiguration) (interfaces.RevalidationCache, error) {
	if b == nil {
		b = RevalidationCache()
	}
	var persistent interfaces.PersistentCacheStore
	if b.persistentFactory != nil {
		p, err := b.persistentFactory.CreatePersistentCacheStore(logging)
		if err != nil {
			return nil, err
		}
		persistent = p
	}
	var store revalidate.Store
	if b.capacity > 0 {
		store = revalidate.NewLRUStore(b.capacity)
	} else {
		store = revalidate.NewMemoryStore()
	}
	return revalidate.NewCache(store, persistent, logging.Loggers), nil
}

// DescribeConfiguration returns the settings of the builder as a JSON-friendly value.
func (b *RevalidationCacheBuilder) DescribeConfiguration() ldvalue.Value {
	if b == nil {
		b = RevalidationCache()
	}
	obj := ldvalue.ObjectBuild().SetBool("persistent", b.persistentFactory != nil)
	if b.capacity > 0 {
		obj.SetInt("capacity", b.capacity)
	} else {
		obj.Set("capacity", ldvalue.Null())
	}
	return obj.Build()
}
