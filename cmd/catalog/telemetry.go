package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/mohsenKh75/next-patterns/isrhooks"
	"github.com/mohsenKh75/next-patterns/isrotel"
)

const (
	tracerName               = "github.com/mohsenKh75/next-patterns/cmd/catalog"
	telemetryShutdownTimeout = 5 * time.Second
	httpMethodAttributeName  = "http.method"
	httpPathAttributeName    = "http.target"
)

// telemetry owns the OpenTelemetry providers behind the fetch hooks, and the Prometheus registry
// that both the otel metrics and the request metrics are exported through.
type telemetry struct {
	registry       *prometheus.Registry
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	hooks          []isrhooks.Hook
	countRequests  bool
	serveMetrics   bool
}

func newTelemetry(config TelemetryConfig, loggers ldlog.Loggers) (*telemetry, error) {
	t := &telemetry{
		registry:      prometheus.NewRegistry(),
		countRequests: config.Prometheus,
		serveMetrics:  config.Prometheus || config.Metrics,
	}
	if config.Tracing || config.Spans {
		t.tracerProvider = sdktrace.NewTracerProvider(sdktrace.WithSyncer(logSpanExporter{loggers: loggers}))
		opts := []isrotel.TracingHookOption{isrotel.WithTracerProvider(t.tracerProvider)}
		if config.Spans {
			opts = append(opts, isrotel.WithSpans())
		}
		t.hooks = append(t.hooks, isrotel.NewTracingHook(opts...))
	}
	if config.Metrics {
		exporter, err := otelprom.New(otelprom.WithRegisterer(t.registry))
		if err != nil {
			_ = t.Close()
			return nil, err
		}
		t.meterProvider = sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
		metricsHook, err := isrotel.NewMetricsHook(t.meterProvider)
		if err != nil {
			_ = t.Close()
			return nil, err
		}
		t.hooks = append(t.hooks, metricsHook)
	}
	return t, nil
}

// handler wraps the site with a span per request, request metrics and the /metrics endpoint, as
// configured.
func (t *telemetry) handler(site http.Handler) http.Handler {
	h := site
	if t.tracerProvider != nil {
		h = traceRequests(t.tracerProvider.Tracer(tracerName), h)
	}
	if t.countRequests {
		h = instrumentRequests(t.registry, h)
	}
	if t.serveMetrics {
		h = withMetricsEndpoint(t.registry, h)
	}
	return h
}

// Close flushes and stops the providers.
func (t *telemetry) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
	defer cancel()
	var errs []error
	if t.meterProvider != nil {
		errs = append(errs, t.meterProvider.Shutdown(ctx))
	}
	if t.tracerProvider != nil {
		errs = append(errs, t.tracerProvider.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

// traceRequests starts a server span for every request, so that the tracing hook has a span to add
// its fetch events to.
func traceRequests(tracer trace.Tracer, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String(httpMethodAttributeName, r.Method),
				attribute.String(httpPathAttributeName, r.URL.Path),
			))
		defer span.End()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// logSpanExporter writes every finished span to the debug log.
type logSpanExporter struct {
	loggers ldlog.Loggers
}

func (e logSpanExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	if !e.loggers.IsDebugEnabled() {
		return nil
	}
	for _, s := range spans {
		e.loggers.Debugf("Span %q took %s with %d events (status %s)",
			s.Name(), s.EndTime().Sub(s.StartTime()), len(s.Events()), s.Status().Code)
	}
	return nil
}

func (e logSpanExporter) Shutdown(context.Context) error {
	return nil
}
