package interfaces

import (
	"context"
)

// RevalidationCache is a stale-while-revalidate cache of serialized fetch results, shared by the
// catalog API client and the page renderer.
//
// See isrcomponents.RevalidationCache for how to create one.
type RevalidationCache interface {
	// Fetch returns the cached payload for key or calls load to produce it. The revalidation
	// interval, cache life and tags of a newly stored entry come from opts.
	Fetch(ctx context.Context, key string, opts FetchOptions, load func(context.Context) ([]byte, error)) ([]byte, error)

	// Invalidate drops the entries with the given keys.
	Invalidate(ctx context.Context, keys ...string) error

	// InvalidateTag drops every entry stored with the given tag and returns the dropped keys.
	InvalidateTag(ctx context.Context, tag string) ([]string, error)

	// Close releases the cache's stores.
	Close() error
}

// PersistentCacheStoreFactory creates the persistent tier of a revalidation cache. Each storage
// integration, such as isrsqlite, provides a builder implementing this interface.
type PersistentCacheStoreFactory interface {
	CreatePersistentCacheStore(logging LoggingConfiguration) (PersistentCacheStore, error)
}

// LoggingConfigurationFactory is an interface for a factory that creates a LoggingConfiguration.
type LoggingConfigurationFactory interface {
	CreateLoggingConfiguration() LoggingConfiguration
}
