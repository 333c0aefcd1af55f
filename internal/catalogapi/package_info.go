// Package catalogapi is the client of the catalog REST API.
//
// This package is internal and its API may change.
package catalogapi
