package isr

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/mohsenKh75/next-patterns/interfaces"
	"github.com/mohsenKh75/next-patterns/isrhooks"
)

// Handle binds the static paths generator, the identifier extractor and the data fetcher of one
// route to an immutable Config. It holds no mutable state and is safe for concurrent use.
type Handle[TItem any, TID ID, TData any] struct {
	config         Config[TItem, TID, TData]
	revalidate     time.Duration
	listRevalidate time.Duration
	limit          int
	loggers        ldlog.Loggers
	hookRunner     hookRunner
}

// New creates a Handle, resolving the defaults of every optional Config field. It never fails;
// a Config missing a required field fails when the corresponding method is first called.
func New[TItem any, TID ID, TData any](config Config[TItem, TID, TData]) *Handle[TItem, TID, TData] {
	h := &Handle[TItem, TID, TData]{
		config:         config,
		revalidate:     config.Revalidate,
		listRevalidate: config.ListRevalidate,
		limit:          DefaultPregenerateLimit,
		loggers:        config.Loggers,
	}
	if h.revalidate == 0 {
		h.revalidate = DefaultRevalidate
	}
	if h.listRevalidate == 0 {
		h.listRevalidate = DefaultListRevalidate
	}
	if n, ok := config.PregenerateLimit.Get(); ok {
		h.limit = n
	}
	h.hookRunner = newHookRunner(config.Hooks, h.loggers)
	return h
}

// GenerateStaticParams returns the route parameters of the detail pages to pre-render, one
// single-entry Params per identifier, in the order returned by the list fetch and truncated to
// the pre-generation limit.
//
// If the list fetch fails, the failure is logged and an empty slice is returned: the pages are
// then rendered on demand at request time instead of failing the build. Use LoadStaticParams to
// receive the error instead.
func (h *Handle[TItem, TID, TData]) GenerateStaticParams(ctx context.Context) []interfaces.Params {
	params, err := h.LoadStaticParams(ctx)
	if err != nil {
		h.loggers.Errorf("Error generating static params for %s: %s", h.config.ParamName, err)
		return []interfaces.Params{}
	}
	return params
}

// LoadStaticParams is like GenerateStaticParams but returns the list fetch error, if any.
func (h *Handle[TItem, TID, TData]) LoadStaticParams(ctx context.Context) ([]interfaces.Params, error) {
	opts := interfaces.FetchOptions{Revalidate: h.listRevalidate, CacheLife: h.config.CacheLife}

	execution := h.hookRunner.prepareFetchSeries(isrhooks.OperationListFetch, h.config.ParamName, "", h.listRevalidate)
	execution = h.hookRunner.beforeFetch(ctx, execution)
	items, err := h.config.FetchAll(ctx, opts)
	h.hookRunner.afterFetch(ctx, execution, isrhooks.FetchResult{Err: err, Count: len(items)})
	if err != nil {
		return nil, err
	}

	if h.limit >= 0 && len(items) > h.limit {
		items = items[:h.limit]
	}
	ret := make([]interfaces.Params, 0, len(items))
	for _, item := range items {
		ret = append(ret, interfaces.Params{h.config.ParamName: FormatID(h.config.GetID(item))})
	}
	return ret, nil
}

// ExtractID reads the configured parameter from route parameters and turns it into an identifier.
//
// A missing or empty parameter, a value rejected by ValidateID, and a TransformID error all
// produce a *NotFoundError. These are normal request outcomes and are not logged.
func (h *Handle[TItem, TID, TData]) ExtractID(params interfaces.Params) (TID, error) {
	var zero TID
	raw := params[h.config.ParamName]
	if raw == "" {
		return zero, newNotFoundError(h.config.ParamName, raw, nil)
	}
	if h.config.ValidateID != nil && !h.config.ValidateID(raw) {
		return zero, newNotFoundError(h.config.ParamName, raw, nil)
	}
	if h.config.TransformID != nil {
		id, err := h.config.TransformID(raw)
		if err != nil {
			return zero, newNotFoundError(h.config.ParamName, raw, err)
		}
		return id, nil
	}
	return rawID[TID](raw), nil
}

// FetchData loads the detail payload for an identifier, passing the configured revalidation
// interval to the fetch function.
//
// Any fetch failure is logged with the parameter name and identifier, and returned as a
// *NotFoundError wrapping the original error. There are no retries.
func (h *Handle[TItem, TID, TData]) FetchData(ctx context.Context, id TID) (TData, error) {
	var zero TData
	idString := FormatID(id)
	opts := interfaces.FetchOptions{Revalidate: h.revalidate, CacheLife: h.config.CacheLife}

	execution := h.hookRunner.prepareFetchSeries(isrhooks.OperationFetchByID, h.config.ParamName, idString, h.revalidate)
	execution = h.hookRunner.beforeFetch(ctx, execution)
	data, err := h.config.FetchByID(ctx, id, opts)
	result := isrhooks.FetchResult{Err: err, Count: 1}
	if err != nil {
		result.Count = 0
	}
	h.hookRunner.afterFetch(ctx, execution, result)

	if err != nil {
		h.loggers.Errorf("Error fetching data for %s %s: %s", h.config.ParamName, idString, err)
		return zero, newNotFoundError(h.config.ParamName, idString, err)
	}
	return data, nil
}

// CacheLife returns the cache lifetime unit of the route. The second return value is false if
// none was configured.
func (h *Handle[TItem, TID, TData]) CacheLife() (interfaces.CacheLifeUnit, bool) {
	return h.config.CacheLife, h.config.CacheLife != ""
}

// ParamName returns the route parameter name of the route.
func (h *Handle[TItem, TID, TData]) ParamName() string {
	return h.config.ParamName
}

// Config returns the Config the handle was created from, as it was passed to New.
func (h *Handle[TItem, TID, TData]) Config() Config[TItem, TID, TData] {
	return h.config
}

// DescribeConfiguration returns the resolved settings of the handle as a JSON-friendly value.
func (h *Handle[TItem, TID, TData]) DescribeConfiguration() ldvalue.Value {
	b := ldvalue.ObjectBuild().
		SetString("paramName", h.config.ParamName).
		SetInt("revalidateSeconds", int(h.revalidate/time.Second)).
		SetInt("listRevalidateSeconds", int(h.listRevalidate/time.Second)).
		SetBool("customValidateId", h.config.ValidateID != nil).
		SetBool("customTransformId", h.config.TransformID != nil).
		SetInt("hookCount", len(h.config.Hooks))
	if h.limit < 0 {
		b.Set("pregenerateLimit", ldvalue.Null())
	} else {
		b.SetInt("pregenerateLimit", h.limit)
	}
	if h.config.CacheLife != "" {
		b.SetString("cacheLife", string(h.config.CacheLife))
	}
	return b.Build()
}

// FormatID returns the route parameter form of an identifier.
func FormatID[TID ID](id TID) string {
	return fmt.Sprint(id)
}

func rawID[TID ID](raw string) TID {
	var id TID
	v := reflect.ValueOf(&id).Elem()
	if v.Kind() != reflect.String {
		panic(fmt.Sprintf("isr: identifier type %T needs a TransformID function", id))
	}
	v.SetString(raw)
	return id
}
