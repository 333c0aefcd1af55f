// Package sharedtest contains types and functions used by tests in multiple packages.
//
// Since it is inside the internal tree, it is not visible outside of this module.
package sharedtest
