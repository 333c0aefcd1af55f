package interfaces

import (
	"net/http"
)

// HTTPConfiguration encapsulates HTTP configuration that applies to all outbound requests made to
// the catalog REST API.
//
// See isrcomponents.HTTPConfigurationBuilder for more details on these properties.
type HTTPConfiguration struct {
	// DefaultHeaders contains the headers that should be added to every outbound request. This map
	// is never modified once created.
	DefaultHeaders http.Header

	// CreateHTTPClient is a function that returns a new HTTP client instance based on the
	// configuration. It is never nil in a configuration produced by the builder.
	CreateHTTPClient func() *http.Client
}
