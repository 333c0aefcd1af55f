package isrcomponents

import (
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"

	"github.com/mohsenKh75/next-patterns/interfaces"
)

// LoggingConfigurationBuilder contains methods for configuring logging behavior.
//
// Create a builder with Logging(), change its properties with the builder methods, and pass the
// result of CreateLoggingConfiguration to the components that log:
//
//	logging := isrcomponents.Logging().MinLevel(ldlog.Warn).CreateLoggingConfiguration()
type LoggingConfigurationBuilder struct {
	inited bool
	config interfaces.LoggingConfiguration
}

// Logging returns a configuration builder for logging.
//
// The default configuration has logging enabled with default settings: output to the standard
// logger, minimum level ldlog.Info.
func Logging() *LoggingConfigurationBuilder {
	return &LoggingConfigurationBuilder{}
}

func (b *LoggingConfigurationBuilder) checkValid() bool {
	if b == nil {
		return false
	}
	if !b.inited {
		b.config = interfaces.LoggingConfiguration{Loggers: ldlog.NewDefaultLoggers()}
		b.inited = true
	}
	return true
}

// Loggers specifies an instance of ldlog.Loggers to use for logging. The ldlog package contains
// methods for customizing the destination and level filtering of log output.
func (b *LoggingConfigurationBuilder) Loggers(loggers ldlog.Loggers) *LoggingConfigurationBuilder {
	if b.checkValid() {
		b.config.Loggers = loggers
	}
	return b
}

// MinLevel specifies the minimum level for log output, where ldlog.Debug is the lowest and ldlog.Error
// is the highest. Log messages at a level lower than this will be suppressed. The default is
// ldlog.Info.
//
// This is equivalent to creating an ldlog.Loggers instance, calling SetMinLevel() on it, and then
// passing it to LoggingConfigurationBuilder.Loggers().
func (b *LoggingConfigurationBuilder) MinLevel(level ldlog.LogLevel) *LoggingConfigurationBuilder {
	if b.checkValid() {
		b.config.Loggers.SetMinLevel(level)
	}
	return b
}

// Prefix specifies a string that is prepended to every log message.
func (b *LoggingConfigurationBuilder) Prefix(prefix string) *LoggingConfigurationBuilder {
	if b.checkValid() {
		b.config.Loggers.SetPrefix(prefix)
	}
	return b
}

// CreateLoggingConfiguration returns the configured LoggingConfiguration.
func (b *LoggingConfigurationBuilder) CreateLoggingConfiguration() interfaces.LoggingConfiguration {
	if !b.checkValid() {
		return interfaces.LoggingConfiguration{Loggers: ldlog.NewDefaultLoggers()}
	}
	return b.config
}

// NoLogging returns a configuration object that disables logging.
//
//	logging := isrcomponents.NoLogging().CreateLoggingConfiguration()
func NoLogging() interfaces.LoggingConfigurationFactory {
	return noLoggingConfigurationFactory{}
}

type noLoggingConfigurationFactory struct{}

func (f noLoggingConfigurationFactory) CreateLoggingConfiguration() interfaces.LoggingConfiguration {
	return interfaces.LoggingConfiguration{Loggers: ldlog.NewDisabledLoggers()}
}
