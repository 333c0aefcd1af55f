package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsPath = "/metrics"

// instrumentRequests records the count and duration of page requests in registry.
func instrumentRequests(registry *prometheus.Registry, site http.Handler) http.Handler {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_http_requests_total",
		Help: "Number of page requests by status code and method.",
	}, []string{"code", "method"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_http_request_duration_seconds",
		Help:    "Duration of page requests by status code and method.",
		Buckets: prometheus.DefBuckets,
	}, []string{"code", "method"})
	registry.MustRegister(requests, duration, collectors.NewGoCollector())
	return promhttp.InstrumentHandlerCounter(requests, promhttp.InstrumentHandlerDuration(duration, site))
}

// withMetricsEndpoint serves the metrics in registry at /metrics, and everything else from site.
func withMetricsEndpoint(registry *prometheus.Registry, site http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(metricsPath, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.Handle("/", site)
	return mux
}
