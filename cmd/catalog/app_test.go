package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/launchdarkly/go-test-helpers/v3/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohsenKh75/next-patterns/internal/pages"
	"github.com/mohsenKh75/next-patterns/testhelpers/catalogservices"
)

func testConfig() Config {
	config := defaultConfig()
	config.LogLevel = "none"
	return config
}

func TestExportFromCatalogFiles(t *testing.T) {
	dir := t.TempDir()
	productsFile := filepath.Join(dir, "products.yaml")
	require.NoError(t, os.WriteFile(productsFile, []byte(`
products:
  - id: 5
    title: Ring
    price: 9.99
  - id: 6
    title: Bracelet
    price: 19.5
`), 0o600))

	config := testConfig()
	config.Catalog.Files = []string{productsFile}
	config.Cache.SQLitePath = filepath.Join(dir, "cache.db")
	a, err := newApp(config)
	require.NoError(t, err)
	defer a.Close()

	out := filepath.Join(dir, "out")
	manifest, err := a.site.Export(context.Background(), out, pages.ExportOptions{Strict: true})
	require.NoError(t, err)
	assert.Len(t, manifest.Pages, 4)

	data, err := os.ReadFile(filepath.Join(out, "products", "6", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Bracelet")
}

func TestNewAppFailsForUnreadableCatalogFiles(t *testing.T) {
	config := testConfig()
	config.Catalog.Files = []string{filepath.Join(t.TempDir(), "missing.json")}

	_, err := newApp(config)
	assert.Error(t, err)
}

func TestServeFromCatalogAPI(t *testing.T) {
	handler := catalogservices.CatalogServiceHandler(catalogservices.SampleProducts())
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		config := testConfig()
		config.Catalog.BaseURI = server.URL
		config.Telemetry = TelemetryConfig{Tracing: true, Metrics: true}
		a, err := newApp(config)
		require.NoError(t, err)
		defer a.Close()

		rec := httptest.NewRecorder()
		a.handler().ServeHTTP(rec, httptest.NewRequest("GET", "/products/1", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Fjallraven Backpack")
	})
}

func TestServeExportsFetchMetrics(t *testing.T) {
	handler := catalogservices.CatalogServiceHandler(catalogservices.SampleProducts())
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		config := testConfig()
		config.Catalog.BaseURI = server.URL
		config.Telemetry = TelemetryConfig{Metrics: true}
		a, err := newApp(config)
		require.NoError(t, err)
		defer a.Close()
		h := a.handler()

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/products/1", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "isr_fetch_count")
		assert.Contains(t, body, `isr_operation="fetchById"`)
		assert.Contains(t, body, "isr_fetch_duration")
		assert.NotContains(t, body, "catalog_http_requests_total")
	})
}

func TestServeWithoutTelemetryHasNoMetricsEndpoint(t *testing.T) {
	handler := catalogservices.CatalogServiceHandler(catalogservices.SampleProducts())
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		config := testConfig()
		config.Catalog.BaseURI = server.URL
		a, err := newApp(config)
		require.NoError(t, err)
		defer a.Close()

		assert.Empty(t, a.telemetry.hooks)
		rec := httptest.NewRecorder()
		a.handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	err := run([]string{"deploy"})
	require.Error(t, err)
	assert.Equal(t, `unknown command "deploy"`, err.Error())
}

func TestExportRequiresOutputDirectory(t *testing.T) {
	err := run([]string{"export"})
	require.Error(t, err)
	assert.Equal(t, "export: -out is required", err.Error())
}
