package isrcomponents

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohsenKh75/next-patterns/interfaces"
)

type failingPersistentFactory struct{}

func (failingPersistentFactory) CreatePersistentCacheStore(interfaces.LoggingConfiguration) (
	interfaces.PersistentCacheStore, error) {
	return nil, errors.New("no database")
}

func TestRevalidationCacheBuilder(t *testing.T) {
	logging := NoLogging().CreateLoggingConfiguration()

	for name, b := range map[string]*RevalidationCacheBuilder{
		"unbounded": RevalidationCache(),
		"bounded":   RevalidationCache().Capacity(10),
	} {
		t.Run(name, func(t *testing.T) {
			cache, err := b.Build(logging)
			require.NoError(t, err)
			defer cache.Close()

			calls := 0
			load := func(context.Context) ([]byte, error) {
				calls++
				return []byte("v"), nil
			}
			opts := interfaces.FetchOptions{Revalidate: time.Hour}
			for i := 0; i < 2; i++ {
				payload, err := cache.Fetch(context.Background(), "k", opts, load)
				require.NoError(t, err)
				assert.Equal(t, []byte("v"), payload)
			}
			assert.Equal(t, 1, calls)
		})
	}

	t.Run("persistent store failure", func(t *testing.T) {
		_, err := RevalidationCache().Persistent(failingPersistentFactory{}).Build(logging)
		assert.EqualError(t, err, "no database")
	})

	t.Run("DescribeConfiguration", func(t *testing.T) {
		assert.Equal(t, ldvalue.Parse([]byte(`{"persistent":false,"capacity":null}`)),
			RevalidationCache().DescribeConfiguration())
		assert.Equal(t, ldvalue.Parse([]byte(`{"persistent":true,"capacity":5}`)),
			RevalidationCache().Capacity(5).Persistent(failingPersistentFactory{}).DescribeConfiguration())
	})
}
