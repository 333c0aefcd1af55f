// Package isrsqlite provides a SQLite-backed persistent tier for the revalidation cache, so that
// cached catalog responses and rendered pages survive a restart.
//
// It uses the pure Go driver modernc.org/sqlite, so no C toolchain is needed.
//
//	cache, err := isrcomponents.RevalidationCache().
//	    Persistent(isrsqlite.CacheStore().FilePath("/var/lib/catalog/cache.db")).
//	    Build(logging)
package isrsqlite
