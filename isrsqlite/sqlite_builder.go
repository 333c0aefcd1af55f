package isrsqlite

import (
	"fmt"
	"regexp"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/mohsenKh75/next-patterns/interfaces"
)

const (
	// DefaultFilePath is the database file used if FilePath is not set.
	DefaultFilePath = "catalog-cache.db"
	// DefaultTable is the name of the table holding the cache entries.
	DefaultTable = "cache_entries"
)

var validTableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// CacheStore returns a configurable builder for a SQLite-backed persistent cache store.
func CacheStore() *CacheStoreBuilder {
	return &CacheStoreBuilder{
		filePath: DefaultFilePath,
		table:    DefaultTable,
	}
}

// CacheStoreBuilder is a builder for configuring the SQLite-based persistent cache store.
//
// Obtain an instance of this type by calling CacheStore(), and pass it to
// isrcomponents.RevalidationCacheBuilder.Persistent(). Builder calls can be chained:
//
//	isrsqlite.CacheStore().FilePath("cache.db").Table("storefront_cache")
type CacheStoreBuilder struct {
	filePath string
	table    string
}

// FilePath specifies the database file. Missing parent directories are created. The special name
// ":memory:" gives a database that lives only as long as the store. If this is empty,
// DefaultFilePath is used.
func (b *CacheStoreBuilder) FilePath(filePath string) *CacheStoreBuilder {
	if filePath == "" {
		filePath = DefaultFilePath
	}
	b.filePath = filePath
	return b
}

// Table specifies the table name, so that several caches can share one database file. If this is
// empty, DefaultTable is used.
func (b *CacheStoreBuilder) Table(table string) *CacheStoreBuilder {
	if table == "" {
		table = DefaultTable
	}
	b.table = table
	return b
}

// CreatePersistentCacheStore opens the database and creates the table if needed.
func (b *CacheStoreBuilder) CreatePersistentCacheStore(
	logging interfaces.LoggingConfiguration,
) (interfaces.PersistentCacheStore, error) {
	if !validTableName.MatchString(b.table) {
		return nil, fmt.Errorf("invalid SQLite table name %q", b.table)
	}
	return newSQLiteCacheStoreImpl(b, logging.Loggers)
}

// DescribeConfiguration returns a description of the store for diagnostics.
func (b *CacheStoreBuilder) DescribeConfiguration() ldvalue.Value {
	return ldvalue.String("SQLite")
}
