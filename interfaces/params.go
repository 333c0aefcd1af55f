package interfaces

import "time"

// Params is the set of route parameters supplied by the routing layer, keyed by parameter name.
//
// It is also the shape of each entry returned by a static paths generator: a single-entry map from
// the configured parameter name to the string form of one identifier.
type Params map[string]string

// FetchOptions are passed to every list or detail fetch so that the underlying caching mechanism
// knows how long the fetched data may be reused.
type FetchOptions struct {
	// Revalidate is the maximum age of cached data before it is considered stale and re-fetched.
	// Zero means the fetch implementation should apply its own default.
	Revalidate time.Duration

	// CacheLife is the named cache lifetime profile of the page being rendered, if any.
	CacheLife CacheLifeUnit

	// Tags label the cached result so that it can be invalidated on demand.
	Tags []string
}

// WithTags returns a copy of the options with the given tags appended.
func (o FetchOptions) WithTags(tags ...string) FetchOptions {
	ret := o
	ret.Tags = make([]string, 0, len(o.Tags)+len(tags))
	ret.Tags = append(ret.Tags, o.Tags...)
	ret.Tags = append(ret.Tags, tags...)
	return ret
}
