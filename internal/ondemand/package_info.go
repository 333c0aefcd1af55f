// Package ondemand subscribes to a stream of revalidation events and invalidates the matching
// entries of the revalidation cache as they arrive.
//
// This package is internal and its API may change.
package ondemand
