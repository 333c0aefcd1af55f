// Package internal contains values shared by the catalog packages that are not part of the public API.
package internal

// CatalogVersion is the current release version of the catalog packages.
const CatalogVersion = "1.0.0"
