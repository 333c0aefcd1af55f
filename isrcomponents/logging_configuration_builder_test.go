package isrcomponents

import (
	"testing"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-sdk-common/v3/ldlogtest"
	"github.com/stretchr/testify/assert"
)

func TestLoggingConfigurationBuilder(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c := Logging().CreateLoggingConfiguration()
		assert.False(t, c.Loggers.IsDebugEnabled())
	})

	t.Run("Loggers", func(t *testing.T) {
		mockLoggers := ldlogtest.NewMockLog()
		c := Logging().Loggers(mockLoggers.Loggers).CreateLoggingConfiguration()
		assert.Equal(t, mockLoggers.Loggers, c.Loggers)
	})

	t.Run("MinLevel", func(t *testing.T) {
		mockLoggers := ldlogtest.NewMockLog()
		c := Logging().Loggers(mockLoggers.Loggers).MinLevel(ldlog.Error).CreateLoggingConfiguration()
		c.Loggers.Info("suppress this message")
		c.Loggers.Error("log this message")
		assert.Len(t, mockLoggers.GetOutput(ldlog.Info), 0)
		assert.Equal(t, []string{"log this message"}, mockLoggers.GetOutput(ldlog.Error))
	})

	t.Run("NoLogging", func(t *testing.T) {
		c := NoLogging().CreateLoggingConfiguration()
		assert.Equal(t, ldlog.NewDisabledLoggers(), c.Loggers)
	})

	t.Run("nil safety", func(t *testing.T) {
		var b *LoggingConfigurationBuilder = nil
		b = b.Loggers(ldlog.NewDefaultLoggers()).MinLevel(ldlog.Debug).Prefix("x")
		_ = b.CreateLoggingConfiguration()
	})
}
