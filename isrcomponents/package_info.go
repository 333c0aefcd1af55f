// Package isrcomponents provides the configuration builders for the components around an
// isr.Handle: logging, the HTTP client of the catalog API, and the revalidation cache.
//
// Each builder has chainable setters with documented defaults, and a method that creates the
// configured component:
//
//	logging := isrcomponents.Logging().MinLevel(ldlog.Warn).CreateLoggingConfiguration()
//	cache, err := isrcomponents.RevalidationCache().
//	    Capacity(1000).
//	    Persistent(isrsqlite.CacheStore().FilePath("cache.db")).
//	    Build(logging)
package isrcomponents
