package interfaces

import (
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

// LoggingConfiguration encapsulates the general logging configuration of the catalog components.
//
// See isrcomponents.LoggingConfigurationBuilder for more details on these properties.
type LoggingConfiguration struct {
	// Loggers is a configured ldlog.Loggers instance for general logging.
	Loggers ldlog.Loggers
}
