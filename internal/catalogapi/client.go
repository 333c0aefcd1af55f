package catalogapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gregjones/httpcache"
	"github.com/launchdarkly/go-jsonstream/v3/jreader"
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"golang.org/x/exp/maps"

	"github.com/mohsenKh75/next-patterns/catalog"
	"github.com/mohsenKh75/next-patterns/interfaces"
)

const (
	// DefaultBaseURI is the catalog REST API used when none is configured.
	DefaultBaseURI = "https://fakestoreapi.com"

	// DefaultRevalidate is the revalidation interval of a request whose FetchOptions have none.
	DefaultRevalidate = time.Hour

	productsPath = "/products"

	// ProductsTag is the cache tag of every response derived from the product list.
	ProductsTag = "products"
)

// ProductTag returns the cache tag of the responses for one product.
func ProductTag(id int) string {
	return "product:" + strconv.Itoa(id)
}

// Client fetches products from the catalog REST API. It implements catalog.DataSource.
//
// Responses go through the revalidation cache, keyed by request URL, if one is configured, and
// the HTTP transport honors the API's own caching headers.
type Client struct {
	httpClient *http.Client
	baseURI    string
	headers    http.Header
	cache      interfaces.RevalidationCache
	loggers    ldlog.Loggers
}

var _ catalog.DataSource = (*Client)(nil)

// NewClient creates a Client. An empty baseURI means DefaultBaseURI; cache may be nil to disable
// response caching outside of the HTTP layer.
func NewClient(
	baseURI string,
	httpConfig interfaces.HTTPConfiguration,
	cache interfaces.RevalidationCache,
	loggers ldlog.Loggers,
) *Client {
	if baseURI == "" {
		baseURI = DefaultBaseURI
	}
	var httpClient *http.Client
	if httpConfig.CreateHTTPClient != nil {
		httpClient = httpConfig.CreateHTTPClient()
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	modifiedClient := *httpClient
	modifiedClient.Transport = &httpcache.Transport{
		Cache:               httpcache.NewMemoryCache(),
		MarkCachedResponses: true,
		Transport:           httpClient.Transport,
	}

	return &Client{
		httpClient: &modifiedClient,
		baseURI:    strings.TrimRight(baseURI, "/"),
		headers:    httpConfig.DefaultHeaders,
		cache:      cache,
		loggers:    loggers,
	}
}

// BaseURI returns the API base URI the client sends requests to.
func (c *Client) BaseURI() string {
	return c.baseURI
}

// FetchProducts returns every product from the API.
func (c *Client) FetchProducts(ctx context.Context, opts interfaces.FetchOptions) ([]catalog.Product, error) {
	body, err := c.get(ctx, productsPath, withDefaults(opts, ProductsTag))
	if err == nil {
		reader := jreader.NewReader(body)
		products := catalog.ReadProducts(&reader)
		if err = reader.Error(); err == nil {
			return products, nil
		}
		err = malformedJSONError{err}
	}
	if isAborted(err) {
		return nil, err
	}
	c.loggers.Errorf("Error fetching products: %s", err)
	return nil, err
}

// FetchProductByID returns one product from the API.
//
// The catalog API answers an unknown ID with an empty body, which is reported as a JSON error.
func (c *Client) FetchProductByID(ctx context.Context, id int, opts interfaces.FetchOptions) (catalog.Product, error) {
	body, err := c.get(ctx, productsPath+"/"+strconv.Itoa(id), withDefaults(opts, ProductsTag, ProductTag(id)))
	if err == nil {
		var product catalog.Product
		if product, err = catalog.ParseProduct(body); err == nil {
			return product, nil
		}
		err = malformedJSONError{err}
	}
	if isAborted(err) {
		return catalog.Product{}, err
	}
	c.loggers.Errorf("Error fetching product %d: %s", id, err)
	return catalog.Product{}, err
}

func (c *Client) get(ctx context.Context, resource string, opts interfaces.FetchOptions) ([]byte, error) {
	url := c.baseURI + resource
	if c.cache == nil {
		return c.makeRequest(ctx, url)
	}
	body, err := c.cache.Fetch(ctx, url, opts, func(ctx context.Context) ([]byte, error) {
		body, err := c.makeRequest(ctx, url)
		if err != nil {
			return nil, err
		}
		// only well-formed responses are worth caching; the caller parses the payload again
		r := jreader.NewReader(body)
		r.SkipValue()
		if err := r.Error(); err != nil {
			return nil, malformedJSONError{err}
		}
		return body, nil
	})
	if err != nil && !isAborted(err) {
		// the cache stops waiting for a shared load when the caller's context is done
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, requestAbortedError{ctxErr}
		}
	}
	return body, err
}

func (c *Client) makeRequest(ctx context.Context, url string) ([]byte, error) {
	req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if reqErr != nil {
		return nil, fmt.Errorf(
			"unable to create a catalog request; this is not a network problem, most likely a bad base URI: %w",
			reqErr,
		)
	}
	if c.headers != nil {
		req.Header = maps.Clone(c.headers)
	}

	if c.loggers.IsDebugEnabled() {
		c.loggers.Debugf("Requesting %s", url)
	}
	res, resErr := c.httpClient.Do(req)
	if resErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, requestAbortedError{ctxErr}
		}
		return nil, resErr
	}
	defer func() {
		_, _ = io.ReadAll(res.Body)
		_ = res.Body.Close()
	}()

	body, ioErr := io.ReadAll(res.Body)
	if ioErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, requestAbortedError{ctxErr}
		}
		return nil, ioErr // COVERAGE: there is no way to simulate this condition in unit tests
	}
	if res.StatusCode/100 != 2 {
		return nil, newHTTPStatusError(res.StatusCode, body)
	}
	if c.loggers.IsDebugEnabled() && res.Header.Get(httpcache.XFromCache) != "" {
		c.loggers.Debugf("Response for %s was served from the HTTP cache", url)
	}
	return body, nil
}

func withDefaults(opts interfaces.FetchOptions, tags ...string) interfaces.FetchOptions {
	if opts.Revalidate <= 0 {
		opts.Revalidate = DefaultRevalidate
	}
	return opts.WithTags(tags...)
}

func isAborted(err error) bool {
	var ae requestAbortedError
	return errors.As(err, &ae)
}
