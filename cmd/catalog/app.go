package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	isr "github.com/mohsenKh75/next-patterns"
	"github.com/mohsenKh75/next-patterns/catalog"
	"github.com/mohsenKh75/next-patterns/catalogfile"
	"github.com/mohsenKh75/next-patterns/catalogwatch"
	"github.com/mohsenKh75/next-patterns/interfaces"
	"github.com/mohsenKh75/next-patterns/internal/catalogapi"
	"github.com/mohsenKh75/next-patterns/internal/ondemand"
	"github.com/mohsenKh75/next-patterns/internal/pages"
	"github.com/mohsenKh75/next-patterns/isrcomponents"
	"github.com/mohsenKh75/next-patterns/isrsqlite"
)

// app holds the components built from a Config.
type app struct {
	site       *pages.Site
	cache      interfaces.RevalidationCache
	httpConfig interfaces.HTTPConfiguration
	telemetry  *telemetry
	closers    []io.Closer
	loggers    ldlog.Loggers
}

func newApp(config Config) (*app, error) {
	level, err := logLevelFromName(config.LogLevel)
	if err != nil {
		return nil, err
	}
	logging := isrcomponents.Logging().MinLevel(level).CreateLoggingConfiguration()
	a := &app{loggers: logging.Loggers}

	httpBuilder := isrcomponents.HTTPConfiguration().
		ConnectTimeout(config.Catalog.ConnectTimeout).
		UserAgent(config.Catalog.UserAgent)
	if config.Catalog.CACertFile != "" {
		httpBuilder.CACertFile(config.Catalog.CACertFile)
	}
	if a.httpConfig, err = httpBuilder.CreateHTTPConfiguration(); err != nil {
		return nil, err
	}

	cacheBuilder := isrcomponents.RevalidationCache().Capacity(config.Cache.Capacity)
	if config.Cache.SQLitePath != "" {
		cacheBuilder.Persistent(isrsqlite.CacheStore().FilePath(config.Cache.SQLitePath))
	}
	if a.cache, err = cacheBuilder.Build(logging); err != nil {
		return nil, err
	}
	a.closers = append(a.closers, a.cache)
	if a.loggers.IsDebugEnabled() {
		a.loggers.Debugf("Revalidation cache: %s", cacheBuilder.DescribeConfiguration().JSONString())
	}

	dataSource, err := a.newDataSource(config.Catalog, logging)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	if a.telemetry, err = newTelemetry(config.Telemetry, a.loggers); err != nil {
		_ = a.Close()
		return nil, err
	}
	a.closers = append(a.closers, a.telemetry)

	a.site, err = pages.NewSite(pages.Config{
		Catalog:          dataSource,
		Cache:            a.cache,
		PregenerateLimit: pregenerateLimit(config.Export.PregenerateLimit),
		Hooks:            a.telemetry.hooks,
		Loggers:          a.loggers,
	})
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	if a.loggers.IsDebugEnabled() {
		a.loggers.Debugf("Product pages: %s", a.site.Products().DescribeConfiguration().JSONString())
	}
	return a, nil
}

func (a *app) newDataSource(config CatalogConfig, logging interfaces.LoggingConfiguration) (catalog.DataSource, error) {
	if len(config.Files) == 0 {
		return catalogapi.NewClient(config.BaseURI, a.httpConfig, a.cache, a.loggers), nil
	}

	builder := catalogfile.DataSource().FilePaths(config.Files...)
	if config.Watch {
		builder.Reloader(catalogwatch.Watcher().Debounce(config.WatchDebounce).WatchFiles)
	}
	source, err := builder.Build(logging)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, source)

	// pages rendered from the previous contents of the files are stale once they are reloaded
	cache := a.cache
	source.OnReload(func([]catalog.Product) {
		_, _ = cache.InvalidateTag(context.Background(), catalogapi.ProductsTag)
	})
	ready := make(chan struct{})
	source.Start(ready)
	<-ready
	if !source.IsInitialized() && !config.Watch {
		return nil, fmt.Errorf("unable to load catalog files")
	}
	return source, nil
}

// startRevalidation connects to the on-demand revalidation stream, if one is configured.
func (a *app) startRevalidation(config RevalidationConfig) {
	if config.StreamURI == "" {
		return
	}
	subscriber := ondemand.NewSubscriber(config.StreamURI, a.httpConfig, a.cache,
		config.InitialReconnectDelay, a.loggers)
	a.closers = append(a.closers, subscriber)
	subscriber.Start(make(chan struct{}))
}

// Close closes the components in the reverse order of their creation.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// handler returns the site with the configured telemetry around it.
func (a *app) handler() http.Handler {
	return a.telemetry.handler(a.site)
}

func pregenerateLimit(n *int) ldvalue.OptionalInt {
	switch {
	case n == nil:
		return ldvalue.OptionalInt{}
	case *n < 0:
		return isr.Unlimited()
	}
	return isr.Limit(*n)
}
