// Package interfaces contains the types shared between the ISR configuration helper and the
// components it orchestrates: route parameters, fetch options, and cache lifetime profiles.
//
// You will not need to refer to most of these types unless you are writing a data source or a
// caching integration for the catalog front-end.
package interfaces
