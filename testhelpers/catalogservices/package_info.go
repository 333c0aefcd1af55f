// Package catalogservices provides HTTP handlers that simulate the catalog REST API and the
// on-demand revalidation stream.
//
// This is mainly intended for use in unit tests, and could be useful in testing applications that
// use the catalog packages if it is desirable to use real HTTP rather than other kinds of test
// fixtures.
package catalogservices
