package catalogapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-sdk-common/v3/ldlogtest"
	"github.com/launchdarkly/go-test-helpers/v3/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohsenKh75/next-patterns/interfaces"
	"github.com/mohsenKh75/next-patterns/internal/revalidate"
	"github.com/mohsenKh75/next-patterns/testhelpers/catalogservices"
)

type optsRecordingCache struct {
	keys []string
	opts []interfaces.FetchOptions
}

func (c *optsRecordingCache) Fetch(ctx context.Context, key string, opts interfaces.FetchOptions,
	load func(context.Context) ([]byte, error)) ([]byte, error) {
	c.keys = append(c.keys, key)
	c.opts = append(c.opts, opts)
	return load(ctx)
}

func (c *optsRecordingCache) Invalidate(context.Context, ...string) error { return nil }

func (c *optsRecordingCache) InvalidateTag(context.Context, string) ([]string, error) { return nil, nil }

func (c *optsRecordingCache) Close() error { return nil }

func httpConfig() interfaces.HTTPConfiguration {
	return interfaces.HTTPConfiguration{
		DefaultHeaders:   http.Header{"User-Agent": {"test-agent"}},
		CreateHTTPClient: func() *http.Client { return &http.Client{} },
	}
}

func withClient(
	t *testing.T,
	handler http.Handler,
	cache interfaces.RevalidationCache,
	action func(c *Client, requests <-chan httphelpers.HTTPRequestInfo, mockLog *ldlogtest.MockLog),
) {
	recorder, requests := httphelpers.RecordingHandler(handler)
	mockLog := ldlogtest.NewMockLog()
	httphelpers.WithServer(recorder, func(server *httptest.Server) {
		action(NewClient(server.URL, httpConfig(), cache, mockLog.Loggers), requests, mockLog)
	})
}

func TestFetchProducts(t *testing.T) {
	products := catalogservices.SampleProducts()

	t.Run("success", func(t *testing.T) {
		withClient(t, catalogservices.CatalogServiceHandler(products), nil,
			func(c *Client, requests <-chan httphelpers.HTTPRequestInfo, mockLog *ldlogtest.MockLog) {
				result, err := c.FetchProducts(context.Background(), interfaces.FetchOptions{})
				require.NoError(t, err)
				assert.Equal(t, products, result)

				r := <-requests
				assert.Equal(t, "/products", r.Request.URL.Path)
				assert.Equal(t, "test-agent", r.Request.Header.Get("User-Agent"))
				assert.Len(t, mockLog.GetOutput(ldlog.Error), 0)
			})
	})

	t.Run("HTTP error with body", func(t *testing.T) {
		withClient(t, httphelpers.HandlerWithResponse(500, nil, []byte("boom")), nil,
			func(c *Client, requests <-chan httphelpers.HTTPRequestInfo, mockLog *ldlogtest.MockLog) {
				_, err := c.FetchProducts(context.Background(), interfaces.FetchOptions{})
				require.Error(t, err)
				assert.Equal(t, "API Error (500): boom", err.Error())
				assert.Equal(t, 500, StatusCode(err))
				assert.Equal(t, []string{"Error fetching products: API Error (500): boom"},
					mockLog.GetOutput(ldlog.Error))
			})
	})

	t.Run("HTTP error without body", func(t *testing.T) {
		withClient(t, httphelpers.HandlerWithStatus(503), nil,
			func(c *Client, requests <-chan httphelpers.HTTPRequestInfo, mockLog *ldlogtest.MockLog) {
				_, err := c.FetchProducts(context.Background(), interfaces.FetchOptions{})
				require.Error(t, err)
				assert.Equal(t, "API Error (503): Service Unavailable", err.Error())
			})
	})

	t.Run("malformed JSON", func(t *testing.T) {
		withClient(t, httphelpers.HandlerWithResponse(200, nil, []byte("[{")), nil,
			func(c *Client, requests <-chan httphelpers.HTTPRequestInfo, mockLog *ldlogtest.MockLog) {
				_, err := c.FetchProducts(context.Background(), interfaces.FetchOptions{})
				require.Error(t, err)
				assert.Equal(t, "Failed to parse response as JSON", err.Error())
				assert.Equal(t, 0, StatusCode(err))
				assert.Equal(t, []string{"Error fetching products: Failed to parse response as JSON"},
					mockLog.GetOutput(ldlog.Error))
			})
	})

	t.Run("cancelled context", func(t *testing.T) {
		withClient(t, catalogservices.CatalogServiceHandler(products), nil,
			func(c *Client, requests <-chan httphelpers.HTTPRequestInfo, mockLog *ldlogtest.MockLog) {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				_, err := c.FetchProducts(ctx, interfaces.FetchOptions{})
				require.Error(t, err)
				assert.Equal(t, "request was aborted", err.Error())
				assert.True(t, errors.Is(err, context.Canceled))
				assert.Len(t, mockLog.GetOutput(ldlog.Error), 0)
			})
	})
}

func TestFetchProductByID(t *testing.T) {
	products := catalogservices.SampleProducts()

	t.Run("success", func(t *testing.T) {
		withClient(t, catalogservices.CatalogServiceHandler(products), nil,
			func(c *Client, requests <-chan httphelpers.HTTPRequestInfo, mockLog *ldlogtest.MockLog) {
				result, err := c.FetchProductByID(context.Background(), 3, interfaces.FetchOptions{})
				require.NoError(t, err)
				assert.Equal(t, products[2], result)
				assert.Equal(t, "/products/3", (<-requests).Request.URL.Path)
			})
	})

	t.Run("unknown ID", func(t *testing.T) {
		withClient(t, catalogservices.CatalogServiceHandler(products), nil,
			func(c *Client, requests <-chan httphelpers.HTTPRequestInfo, mockLog *ldlogtest.MockLog) {
				_, err := c.FetchProductByID(context.Background(), 7, interfaces.FetchOptions{})
				require.Error(t, err)
				assert.Equal(t, []string{"Error fetching product 7: Failed to parse response as JSON"},
					mockLog.GetOutput(ldlog.Error))
			})
	})

	t.Run("not found status", func(t *testing.T) {
		withClient(t, httphelpers.HandlerWithStatus(404), nil,
			func(c *Client, requests <-chan httphelpers.HTTPRequestInfo, mockLog *ldlogtest.MockLog) {
				_, err := c.FetchProductByID(context.Background(), 7, interfaces.FetchOptions{})
				assert.Equal(t, 404, StatusCode(err))
				assert.Equal(t, []string{"Error fetching product 7: API Error (404): Not Found"},
					mockLog.GetOutput(ldlog.Error))
			})
	})
}

func TestClientCaching(t *testing.T) {
	products := catalogservices.SampleProducts()

	t.Run("default revalidate and tags", func(t *testing.T) {
		cache := &optsRecordingCache{}
		withClient(t, catalogservices.CatalogServiceHandler(products), cache,
			func(c *Client, requests <-chan httphelpers.HTTPRequestInfo, mockLog *ldlogtest.MockLog) {
				_, err := c.FetchProducts(context.Background(), interfaces.FetchOptions{})
				require.NoError(t, err)
				_, err = c.FetchProductByID(context.Background(), 2,
					interfaces.FetchOptions{Revalidate: time.Minute, Tags: []string{"page:/products/2"}})
				require.NoError(t, err)

				require.Len(t, cache.opts, 2)
				assert.Equal(t, c.BaseURI()+"/products", cache.keys[0])
				assert.Equal(t, DefaultRevalidate, cache.opts[0].Revalidate)
				assert.Equal(t, []string{ProductsTag}, cache.opts[0].Tags)
				assert.Equal(t, c.BaseURI()+"/products/2", cache.keys[1])
				assert.Equal(t, time.Minute, cache.opts[1].Revalidate)
				assert.Equal(t, []string{"page:/products/2", ProductsTag, "product:2"}, cache.opts[1].Tags)
			})
	})

	t.Run("cached responses avoid requests until invalidated", func(t *testing.T) {
		cache := revalidate.NewCache(nil, nil, ldlog.NewDisabledLoggers())
		defer cache.Close()
		withClient(t, catalogservices.CatalogServiceHandler(products), cache,
			func(c *Client, requests <-chan httphelpers.HTTPRequestInfo, mockLog *ldlogtest.MockLog) {
				for i := 0; i < 3; i++ {
					result, err := c.FetchProductByID(context.Background(), 1, interfaces.FetchOptions{})
					require.NoError(t, err)
					assert.Equal(t, products[0], result)
				}
				<-requests
				assert.Len(t, requests, 0)

				_, err := cache.InvalidateTag(context.Background(), ProductTag(1))
				require.NoError(t, err)
				_, err = c.FetchProductByID(context.Background(), 1, interfaces.FetchOptions{})
				require.NoError(t, err)
				<-requests
			})
	})

	t.Run("cancelled context with a cache is reported as aborted", func(t *testing.T) {
		cache := revalidate.NewCache(nil, nil, ldlog.NewDisabledLoggers())
		defer cache.Close()
		withClient(t, catalogservices.CatalogServiceHandler(products), cache,
			func(c *Client, requests <-chan httphelpers.HTTPRequestInfo, mockLog *ldlogtest.MockLog) {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				_, err := c.FetchProducts(ctx, interfaces.FetchOptions{})
				require.Error(t, err)
				assert.Equal(t, "request was aborted", err.Error())
				assert.True(t, errors.Is(err, context.Canceled))
				assert.Len(t, mockLog.GetOutput(ldlog.Error), 0)
				assert.Len(t, requests, 0)
			})
	})

	t.Run("malformed responses are not cached", func(t *testing.T) {
		cache := revalidate.NewCache(nil, nil, ldlog.NewDisabledLoggers())
		defer cache.Close()
		withClient(t, httphelpers.HandlerWithResponse(200, nil, []byte("{")), cache,
			func(c *Client, requests <-chan httphelpers.HTTPRequestInfo, mockLog *ldlogtest.MockLog) {
				for i := 0; i < 2; i++ {
					_, err := c.FetchProductByID(context.Background(), 1, interfaces.FetchOptions{})
					assert.Equal(t, "Failed to parse response as JSON", err.Error())
				}
				<-requests
				<-requests
			})
	})
}

func TestDefaults(t *testing.T) {
	c := NewClient("", interfaces.HTTPConfiguration{}, nil, ldlog.NewDisabledLoggers())
	assert.Equal(t, DefaultBaseURI, c.BaseURI())
	assert.Equal(t, "product:12", ProductTag(12))
}
