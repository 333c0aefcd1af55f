package isrotel

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	isr "github.com/mohsenKh75/next-patterns"
	"github.com/mohsenKh75/next-patterns/interfaces"
	"github.com/mohsenKh75/next-patterns/isrhooks"
)

type product struct {
	id int
}

func configureMemoryExporter() *tracetest.InMemoryExporter {
	exporter := tracetest.NewInMemoryExporter()
	sp := trace.NewSimpleSpanProcessor(exporter)
	provider := trace.NewTracerProvider(
		trace.WithSpanProcessor(sp),
	)
	otel.SetTracerProvider(provider)
	return exporter
}

func makeHandle(detailErr error, hooks ...isrhooks.Hook) *isr.Handle[product, int, string] {
	return isr.New(isr.Config[product, int, string]{
		FetchAll: func(context.Context, interfaces.FetchOptions) ([]product, error) {
			return []product{{1}, {2}}, nil
		},
		GetID:     func(p product) int { return p.id },
		ParamName: "productId",
		FetchByID: func(_ context.Context, id int, _ interfaces.FetchOptions) (string, error) {
			if detailErr != nil {
				return "", detailErr
			}
			return "product " + strconv.Itoa(id), nil
		},
		TransformID: strconv.Atoi,
		Loggers:     ldlog.NewDisabledLoggers(),
		Hooks:       hooks,
	})
}

const spanName = "test-span"

func attributeValue(attrs []attribute.KeyValue, key attribute.Key) attribute.Value {
	set := attribute.NewSet(attrs...)
	value, _ := (&set).Value(key)
	return value
}

func TestBasicSpanEvents(t *testing.T) {
	exporter := configureMemoryExporter()
	tracer := otel.Tracer("catalog-test")
	h := makeHandle(nil, NewTracingHook())

	ctx, span := tracer.Start(context.Background(), spanName)
	_, err := h.FetchData(ctx, 7)
	require.NoError(t, err)
	span.End()

	exportedSpans := exporter.GetSpans().Snapshots()
	require.Len(t, exportedSpans, 1)
	events := exportedSpans[0].Events()
	require.Len(t, events, 1)
	fetchEvent := events[0]
	assert.Equal(t, "isr.fetch", fetchEvent.Name)

	assert.Equal(t, "fetchById", attributeValue(fetchEvent.Attributes, "isr.operation").AsString())
	assert.Equal(t, "productId", attributeValue(fetchEvent.Attributes, "isr.param").AsString())
	assert.Equal(t, "7", attributeValue(fetchEvent.Attributes, "isr.id").AsString())
	assert.Equal(t, "success", attributeValue(fetchEvent.Attributes, "isr.outcome").AsString())
	assert.Equal(t, int64(1), attributeValue(fetchEvent.Attributes, "isr.count").AsInt64())
}

func TestSpanEventForFailedListFetchHasNoID(t *testing.T) {
	exporter := configureMemoryExporter()
	tracer := otel.Tracer("catalog-test")
	h := isr.New(isr.Config[product, int, string]{
		FetchAll: func(context.Context, interfaces.FetchOptions) ([]product, error) {
			return nil, errors.New("unavailable")
		},
		GetID:     func(p product) int { return p.id },
		ParamName: "productId",
		Loggers:   ldlog.NewDisabledLoggers(),
		Hooks:     []isrhooks.Hook{NewTracingHook()},
	})

	ctx, span := tracer.Start(context.Background(), spanName)
	assert.Empty(t, h.GenerateStaticParams(ctx))
	span.End()

	events := exporter.GetSpans().Snapshots()[0].Events()
	require.Len(t, events, 1)
	attrs := attribute.NewSet(events[0].Attributes...)
	_, hasID := (&attrs).Value("isr.id")
	assert.False(t, hasID)
	assert.Equal(t, "listFetch", attributeValue(events[0].Attributes, "isr.operation").AsString())
	assert.Equal(t, "error", attributeValue(events[0].Attributes, "isr.outcome").AsString())
}

func TestMultipleSpanEvents(t *testing.T) {
	exporter := configureMemoryExporter()
	tracer := otel.Tracer("catalog-test")
	h := makeHandle(nil, NewTracingHook())

	ctx, span := tracer.Start(context.Background(), spanName)
	_ = h.GenerateStaticParams(ctx)
	_, _ = h.FetchData(ctx, 1)
	span.End()

	events := exporter.GetSpans().Snapshots()[0].Events()
	require.Len(t, events, 2)
	assert.Equal(t, "listFetch", attributeValue(events[0].Attributes, "isr.operation").AsString())
	assert.Equal(t, int64(2), attributeValue(events[0].Attributes, "isr.count").AsInt64())
	assert.Equal(t, "fetchById", attributeValue(events[1].Attributes, "isr.operation").AsString())
}

func TestSpanCreationWithParent(t *testing.T) {
	exporter := configureMemoryExporter()
	tracer := otel.Tracer("catalog-test")
	h := makeHandle(nil, NewTracingHook(WithSpans()))

	ctx, span := tracer.Start(context.Background(), spanName)
	_, _ = h.FetchData(ctx, 3)
	span.End()

	exportedSpans := exporter.GetSpans().Snapshots()
	require.Len(t, exportedSpans, 2)

	fetchSpan := exportedSpans[0]
	assert.Equal(t, "isr.fetchById", fetchSpan.Name())
	assert.Equal(t, exportedSpans[1].SpanContext().SpanID(), fetchSpan.Parent().SpanID())
	assert.Equal(t, "3", attributeValue(fetchSpan.Attributes(), "isr.id").AsString())
	assert.Equal(t, codes.Unset, fetchSpan.Status().Code)
}

func TestSpanCreationWithoutParent(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider := trace.NewTracerProvider(trace.WithSpanProcessor(trace.NewSimpleSpanProcessor(exporter)))
	h := makeHandle(errors.New("down"), NewTracingHook(WithSpans(), WithTracerProvider(provider)))

	_, err := h.FetchData(context.Background(), 4)
	assert.True(t, isr.IsNotFound(err))

	exportedSpans := exporter.GetSpans().Snapshots()
	require.Len(t, exportedSpans, 1)
	fetchSpan := exportedSpans[0]
	assert.Equal(t, "isr.fetchById", fetchSpan.Name())
	assert.Equal(t, codes.Error, fetchSpan.Status().Code)
	assert.Equal(t, "down", fetchSpan.Status().Description)
	assert.Equal(t, "error", attributeValue(fetchSpan.Attributes(), "isr.outcome").AsString())
}
