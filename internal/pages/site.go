package pages

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	isr "github.com/mohsenKh75/next-patterns"
	"github.com/mohsenKh75/next-patterns/catalog"
	"github.com/mohsenKh75/next-patterns/interfaces"
	"github.com/mohsenKh75/next-patterns/internal/catalogapi"
	"github.com/mohsenKh75/next-patterns/isrhooks"
)

const (
	// ProductParam is the route parameter of the product detail page.
	ProductParam = "productId"

	// HomeCacheLife is the cache life profile of the home page, which has no data.
	HomeCacheLife = interfaces.CacheLifeDays

	// ProductsCacheLife is the cache life profile of the product list and detail pages.
	ProductsCacheLife = interfaces.CacheLifeHours

	pageKeyPrefix = "page:"
)

// Config describes a Site.
type Config struct {
	// Catalog provides the products. Required.
	Catalog catalog.DataSource

	// Cache holds rendered pages between regenerations. If nil, every request renders its page.
	Cache interfaces.RevalidationCache

	// PregenerateLimit is the number of detail pages Export renders. See isr.Config.
	PregenerateLimit ldvalue.OptionalInt

	// Hooks are run around every product fetch.
	Hooks []isrhooks.Hook

	Loggers ldlog.Loggers
}

// Site renders the catalog pages. It implements http.Handler.
type Site struct {
	catalog   catalog.DataSource
	cache     interfaces.RevalidationCache
	products  *isr.Handle[catalog.Product, int, catalog.Product]
	templates pageTemplates
	router    *mux.Router
	loggers   ldlog.Loggers
}

// NewSite creates a Site.
func NewSite(config Config) (*Site, error) {
	if config.Catalog == nil {
		return nil, fmt.Errorf("pages: a catalog data source is required")
	}
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	s := &Site{
		catalog:   config.Catalog,
		cache:     config.Cache,
		templates: templates,
		router:    mux.NewRouter(),
		loggers:   config.Loggers,
	}
	s.products = isr.New(isr.Config[catalog.Product, int, catalog.Product]{
		FetchAll:         config.Catalog.FetchProducts,
		GetID:            catalog.ProductID,
		ParamName:        ProductParam,
		FetchByID:        config.Catalog.FetchProductByID,
		CacheLife:        ProductsCacheLife,
		Revalidate:       catalogapi.DefaultRevalidate,
		PregenerateLimit: config.PregenerateLimit,
		ValidateID:       isProductID,
		TransformID:      strconv.Atoi,
		Loggers:          config.Loggers,
		Hooks:            config.Hooks,
	})

	s.router.HandleFunc("/", s.serveHome).Methods("GET")
	s.router.HandleFunc("/products", s.serveProducts).Methods("GET")
	s.router.HandleFunc("/products/{"+ProductParam+"}", s.serveProduct).Methods("GET")
	s.router.NotFoundHandler = http.HandlerFunc(s.serveNotFound)
	return s, nil
}

// Products returns the regeneration handle of the product detail pages.
func (s *Site) Products() *isr.Handle[catalog.Product, int, catalog.Product] {
	return s.products
}

func (s *Site) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// page is one rendered page and its cache headers.
type page struct {
	body         []byte
	status       int
	cacheControl string
}

func (s *Site) serveHome(w http.ResponseWriter, r *http.Request) {
	s.writePage(w, r, s.renderHome)
}

func (s *Site) serveProducts(w http.ResponseWriter, r *http.Request) {
	s.writePage(w, r, s.renderProducts)
}

func (s *Site) serveProduct(w http.ResponseWriter, r *http.Request) {
	params := interfaces.Params{ProductParam: mux.Vars(r)[ProductParam]}
	s.writePage(w, r, func(ctx context.Context) (page, error) {
		return s.renderProduct(ctx, params)
	})
}

func (s *Site) serveNotFound(w http.ResponseWriter, r *http.Request) {
	s.writePage(w, r, func(context.Context) (page, error) {
		return s.renderNotFound()
	})
}

func (s *Site) writePage(w http.ResponseWriter, r *http.Request, renderPage func(context.Context) (page, error)) {
	p, err := renderPage(r.Context())
	if err != nil && isr.IsNotFound(err) {
		p, err = s.renderNotFound()
	}
	if err != nil {
		if r.Context().Err() == nil {
			s.loggers.Errorf("Error rendering %s: %s", r.URL.Path, err)
		}
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", p.cacheControl)
	w.WriteHeader(p.status)
	_, _ = w.Write(p.body)
}

func (s *Site) renderHome(ctx context.Context) (page, error) {
	revalidate := staticRevalidate(HomeCacheLife)
	opts := interfaces.FetchOptions{Revalidate: revalidate, CacheLife: HomeCacheLife}
	body, err := s.cached(ctx, "/", opts, func(context.Context) ([]byte, error) {
		return render(s.templates.home, newLayoutData("Dashboard"))
	})
	if err != nil {
		return page{}, err
	}
	return page{body: body, status: http.StatusOK, cacheControl: cacheControl(revalidate, HomeCacheLife)}, nil
}

func (s *Site) renderProducts(ctx context.Context) (page, error) {
	revalidate := staticRevalidate(ProductsCacheLife)
	opts := interfaces.FetchOptions{Revalidate: revalidate, CacheLife: ProductsCacheLife}.
		WithTags(catalogapi.ProductsTag)
	body, err := s.cached(ctx, "/products", opts, func(ctx context.Context) ([]byte, error) {
		products, err := s.catalog.FetchProducts(ctx, interfaces.FetchOptions{
			Revalidate: revalidate,
			CacheLife:  ProductsCacheLife,
		})
		if err != nil {
			return nil, err
		}
		return render(s.templates.products, struct {
			layoutData
			Products []catalog.Product
		}{newLayoutData("Products"), products})
	})
	if err != nil {
		return page{}, err
	}
	return page{body: body, status: http.StatusOK, cacheControl: cacheControl(revalidate, ProductsCacheLife)}, nil
}

func (s *Site) renderProduct(ctx context.Context, params interfaces.Params) (page, error) {
	id, err := s.products.ExtractID(params)
	if err != nil {
		return page{}, err
	}
	revalidate := catalogapi.DefaultRevalidate
	unit, _ := s.products.CacheLife()
	opts := interfaces.FetchOptions{Revalidate: revalidate, CacheLife: unit}.
		WithTags(catalogapi.ProductsTag, catalogapi.ProductTag(id))
	body, err := s.cached(ctx, productPath(id), opts, func(ctx context.Context) ([]byte, error) {
		product, err := s.products.FetchData(ctx, id)
		if err != nil {
			return nil, err
		}
		return render(s.templates.product, struct {
			layoutData
			Product catalog.Product
		}{newLayoutData(product.Title), product})
	})
	if err != nil {
		return page{}, err
	}
	return page{body: body, status: http.StatusOK, cacheControl: cacheControl(revalidate, unit)}, nil
}

func (s *Site) renderNotFound() (page, error) {
	body, err := render(s.templates.notFound, newLayoutData("Not found"))
	if err != nil {
		return page{}, err
	}
	return page{body: body, status: http.StatusNotFound, cacheControl: notFoundCacheControl}, nil
}

func (s *Site) cached(
	ctx context.Context,
	path string,
	opts interfaces.FetchOptions,
	renderBody func(context.Context) ([]byte, error),
) ([]byte, error) {
	if s.cache == nil {
		return renderBody(ctx)
	}
	return s.cache.Fetch(ctx, pageKeyPrefix+path, opts, renderBody)
}

// staticRevalidate is the regeneration interval of a page that is not driven by an isr.Handle.
func staticRevalidate(unit interfaces.CacheLifeUnit) time.Duration {
	profile, _ := interfaces.ProfileFor(unit)
	return profile.Revalidate
}

func productPath(id int) string {
	return "/products/" + strconv.Itoa(id)
}

func isProductID(raw string) bool {
	id, err := strconv.Atoi(raw)
	return err == nil && id > 0 && strconv.Itoa(id) == raw
}
