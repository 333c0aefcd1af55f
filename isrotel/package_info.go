// Package isrotel provides OpenTelemetry instrumentation for isr fetches, as hooks for
// isr.Config.Hooks.
//
// TracingHook annotates the active span of each fetch, and can optionally open a span per fetch.
// MetricsHook records a fetch counter and a duration histogram.
package isrotel
