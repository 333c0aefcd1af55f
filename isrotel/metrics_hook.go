package isrotel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/mohsenKh75/next-patterns/isrhooks"
)

const (
	metricKeyPrefix  = "isr.fetch."
	startTimeDataKey = "isrotel.start"
)

// MetricsHook is an isrhooks.Hook that records the count and duration of fetches.
type MetricsHook struct {
	isrhooks.Unimplemented
	metadata     isrhooks.Metadata
	fetchCounter metric.Int64Counter
	durationHist metric.Float64Histogram
	now          func() time.Time
}

var _ isrhooks.Hook = (*MetricsHook)(nil)

// NewMetricsHook creates a MetricsHook using the given provider, or the global provider if it is nil.
func NewMetricsHook(provider metric.MeterProvider) (*MetricsHook, error) {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	meter := provider.Meter(instrumentationName)

	fetchCounter, err := meter.Int64Counter(
		metricKeyPrefix+"count",
		metric.WithDescription("Number of catalog fetches"),
		metric.WithUnit("{fetches}"),
	)
	if err != nil {
		return nil, err
	}
	durationHist, err := meter.Float64Histogram(
		metricKeyPrefix+"duration",
		metric.WithDescription("Duration of catalog fetches"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}
	return &MetricsHook{
		metadata:     isrhooks.NewMetadata("ISR Metrics Hook"),
		fetchCounter: fetchCounter,
		durationHist: durationHist,
		now:          time.Now,
	}, nil
}

// Metadata returns the hook's name.
func (h *MetricsHook) Metadata() isrhooks.Metadata {
	return h.metadata
}

// BeforeFetch records the start time.
func (h *MetricsHook) BeforeFetch(
	_ context.Context,
	_ isrhooks.FetchSeriesContext,
	data isrhooks.FetchSeriesData,
) (isrhooks.FetchSeriesData, error) {
	return isrhooks.NewFetchSeriesBuilder(data).Set(startTimeDataKey, h.now()).Build(), nil
}

// AfterFetch records the fetch.
func (h *MetricsHook) AfterFetch(
	ctx context.Context,
	seriesContext isrhooks.FetchSeriesContext,
	data isrhooks.FetchSeriesData,
	result isrhooks.FetchResult,
) (isrhooks.FetchSeriesData, error) {
	attrs := metric.WithAttributes(
		attribute.String(operationAttributeName, string(seriesContext.Operation())),
		attribute.String(outcomeAttributeName, outcome(result)),
	)
	h.fetchCounter.Add(ctx, 1, attrs)

	if value, ok := data.Get(startTimeDataKey); ok {
		if start, ok := value.(time.Time); ok {
			h.durationHist.Record(ctx, float64(h.now().Sub(start).Milliseconds()), attrs)
		}
	}
	return data, nil
}
