// Package catalogfile provides a catalog.DataSource that reads products from local files, for
// development, tests and offline builds.
//
// Each file is JSON or YAML, and holds either a list of products or an object with a "products"
// list. Products use the same representation as the catalog REST API:
//
//	products:
//	  - id: 1
//	    title: Backpack
//	    price: 109.95
//	    rating: { rate: 3.9, count: 120 }
//
// If the same product ID appears in more than one place, loading fails unless
// DuplicateIDsIgnoreAllButFirst is used. The files are read once when the data source starts; to
// reload them whenever they change, use catalogwatch.WatchFiles as the Reloader.
package catalogfile
