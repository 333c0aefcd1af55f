// Package pages renders the catalog web front-end: the home page, the product list and the product
// detail pages. Pages can be served over HTTP with incremental regeneration through a revalidation
// cache, or exported ahead of time into a directory of static files.
package pages
