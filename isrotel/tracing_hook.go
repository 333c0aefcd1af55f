package isrotel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mohsenKh75/next-patterns/isrhooks"
)

const (
	instrumentationName = "github.com/mohsenKh75/next-patterns/isrotel"
	eventName           = "isr.fetch"
	spanDataKey         = "isrotel.span"

	operationAttributeName = "isr.operation"
	paramAttributeName     = "isr.param"
	idAttributeName        = "isr.id"
	outcomeAttributeName   = "isr.outcome"
	countAttributeName     = "isr.count"
)

type tracingHookOptions struct {
	spans          bool
	tracerProvider trace.TracerProvider
}

// TracingHookOption is used to configure NewTracingHook.
type TracingHookOption func(options *tracingHookOptions)

// WithSpans makes the hook start a span for every fetch, in addition to adding an event to the
// span that is active in the fetch context.
func WithSpans() TracingHookOption {
	return func(options *tracingHookOptions) {
		options.spans = true
	}
}

// WithTracerProvider sets the provider of the spans started by WithSpans. By default the global
// provider is used.
func WithTracerProvider(provider trace.TracerProvider) TracingHookOption {
	return func(options *tracingHookOptions) {
		options.tracerProvider = provider
	}
}

// TracingHook is an isrhooks.Hook that reports fetches to OpenTelemetry tracing.
type TracingHook struct {
	isrhooks.Unimplemented
	metadata isrhooks.Metadata
	options  tracingHookOptions
}

var _ isrhooks.Hook = TracingHook{}

// NewTracingHook creates a TracingHook.
func NewTracingHook(opts ...TracingHookOption) TracingHook {
	hook := TracingHook{metadata: isrhooks.NewMetadata("ISR Tracing Hook")}
	for _, opt := range opts {
		opt(&hook.options)
	}
	return hook
}

// Metadata returns the hook's name.
func (h TracingHook) Metadata() isrhooks.Metadata {
	return h.metadata
}

// BeforeFetch starts the fetch span if WithSpans was used.
func (h TracingHook) BeforeFetch(
	ctx context.Context,
	seriesContext isrhooks.FetchSeriesContext,
	data isrhooks.FetchSeriesData,
) (isrhooks.FetchSeriesData, error) {
	if !h.options.spans {
		return data, nil
	}
	provider := h.options.tracerProvider
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	_, span := provider.Tracer(instrumentationName).Start(ctx, "isr."+string(seriesContext.Operation()),
		trace.WithAttributes(seriesAttributes(seriesContext)...))
	return isrhooks.NewFetchSeriesBuilder(data).Set(spanDataKey, span).Build(), nil
}

// AfterFetch adds a fetch event to the active span and ends the span started by BeforeFetch.
func (h TracingHook) AfterFetch(
	ctx context.Context,
	seriesContext isrhooks.FetchSeriesContext,
	data isrhooks.FetchSeriesData,
	result isrhooks.FetchResult,
) (isrhooks.FetchSeriesData, error) {
	attribs := append(seriesAttributes(seriesContext),
		attribute.String(outcomeAttributeName, outcome(result)),
		attribute.Int(countAttributeName, result.Count),
	)
	trace.SpanFromContext(ctx).AddEvent(eventName, trace.WithAttributes(attribs...))

	if value, ok := data.Get(spanDataKey); ok {
		if span, ok := value.(trace.Span); ok {
			span.SetAttributes(attribs...)
			if result.Err != nil {
				span.SetStatus(codes.Error, result.Err.Error())
			}
			span.End()
		}
	}
	return data, nil
}

func seriesAttributes(seriesContext isrhooks.FetchSeriesContext) []attribute.KeyValue {
	attribs := []attribute.KeyValue{
		attribute.String(operationAttributeName, string(seriesContext.Operation())),
		attribute.String(paramAttributeName, seriesContext.ParamName()),
	}
	if seriesContext.ID() != "" {
		attribs = append(attribs, attribute.String(idAttributeName, seriesContext.ID()))
	}
	return attribs
}

func outcome(result isrhooks.FetchResult) string {
	if result.Succeeded() {
		return "success"
	}
	return "error"
}
