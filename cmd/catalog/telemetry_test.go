package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-sdk-common/v3/ldlogtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestTelemetryHooks(t *testing.T) {
	for _, tc := range []struct {
		name   string
		config TelemetryConfig
		hooks  int
	}{
		{"none", TelemetryConfig{}, 0},
		{"tracing", TelemetryConfig{Tracing: true}, 1},
		{"spans", TelemetryConfig{Spans: true}, 1},
		{"metrics", TelemetryConfig{Metrics: true}, 1},
		{"prometheus only", TelemetryConfig{Prometheus: true}, 0},
		{"all", TelemetryConfig{Tracing: true, Spans: true, Metrics: true, Prometheus: true}, 2},
	} {
		t.Run(tc.name, func(t *testing.T) {
			tel, err := newTelemetry(tc.config, ldlog.NewDisabledLoggers())
			require.NoError(t, err)
			defer tel.Close()
			assert.Len(t, tel.hooks, tc.hooks)
			assert.Equal(t, tc.config.Tracing || tc.config.Spans, tel.tracerProvider != nil)
			assert.Equal(t, tc.config.Metrics, tel.meterProvider != nil)
		})
	}
}

func TestTracedRequestSpanIsLogged(t *testing.T) {
	mockLog := ldlogtest.NewMockLog()
	mockLog.Loggers.SetMinLevel(ldlog.Debug)
	tel, err := newTelemetry(TelemetryConfig{Tracing: true}, mockLog.Loggers)
	require.NoError(t, err)
	defer tel.Close()

	var sawSpan bool
	site := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawSpan = trace.SpanFromContext(r.Context()).SpanContext().IsValid()
		w.WriteHeader(http.StatusNoContent)
	})
	rec := httptest.NewRecorder()
	tel.handler(site).ServeHTTP(rec, httptest.NewRequest("GET", "/products/3", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, sawSpan)
	mockLog.AssertMessageMatch(t, true, ldlog.Debug, `Span "GET /products/3" took .* with 0 events`)
}

func TestSpansAreNotLoggedAboveDebugLevel(t *testing.T) {
	mockLog := ldlogtest.NewMockLog()
	mockLog.Loggers.SetMinLevel(ldlog.Info)
	tel, err := newTelemetry(TelemetryConfig{Tracing: true}, mockLog.Loggers)
	require.NoError(t, err)
	defer tel.Close()

	site := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	tel.handler(site).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	assert.Len(t, mockLog.GetOutput(ldlog.Debug), 0)
}

func TestTelemetryCloseShutsDownProviders(t *testing.T) {
	tel, err := newTelemetry(TelemetryConfig{Tracing: true, Metrics: true}, ldlog.NewDisabledLoggers())
	require.NoError(t, err)

	require.NoError(t, tel.Close())
	_, span := tel.tracerProvider.Tracer(tracerName).Start(context.Background(), "late")
	assert.False(t, span.SpanContext().IsValid())
}
