// Package revalidate implements the stale-while-revalidate cache that sits between the catalog
// pages and the data they fetch.
//
// This package is internal and its API may change.
package revalidate
