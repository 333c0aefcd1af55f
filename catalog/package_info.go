// Package catalog defines the product model of the catalog and the DataSource interface through
// which the pages load it.
package catalog
