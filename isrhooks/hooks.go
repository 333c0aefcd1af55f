package isrhooks

import (
	"context"
)

// Implementation Note: Unimplemented should always contain an implementation of every series
// interface. It does not implement Hook directly because implementers must provide Metadata.

// A Hook is used to observe or extend the fetches made by an ISR handle.
//
// In order to avoid implementing unused methods, implementers should compose Unimplemented.
//
//	type MyHook struct {
//	  isrhooks.Unimplemented
//	}
type Hook interface {
	Metadata() Metadata
	FetchSeries
}

// FetchSeries is composed of stages that are called around each list or detail fetch.
type FetchSeries interface {
	// BeforeFetch is called before the underlying fetch function runs. The returned FetchSeriesData
	// is passed to AfterFetch for the same hook.
	//
	// The FetchSeriesData returned should always contain the previous data as well as any new data
	// which is required by AfterFetch.
	BeforeFetch(
		ctx context.Context,
		seriesContext FetchSeriesContext,
		data FetchSeriesData,
	) (FetchSeriesData, error)

	// AfterFetch is called after the underlying fetch function has returned, with the outcome of
	// the fetch.
	AfterFetch(
		ctx context.Context,
		seriesContext FetchSeriesContext,
		data FetchSeriesData,
		result FetchResult,
	) (FetchSeriesData, error)
}

// FetchResult describes how a fetch ended.
type FetchResult struct {
	// Err is the error returned by the fetch function, or nil.
	Err error

	// Count is the number of items returned by a list fetch. It is always 1 for a successful
	// detail fetch and 0 for a failed one.
	Count int
}

// Succeeded returns true if the fetch returned no error.
func (r FetchResult) Succeeded() bool {
	return r.Err == nil
}

// Unimplemented implements all Hook stages with functions that return their input unchanged.
//
//	type MyHook struct {
//	  isrhooks.Unimplemented
//	}
//
// The hook should implement at least one stage as well as the Metadata function.
type Unimplemented struct{}

// BeforeFetch is a default implementation of the BeforeFetch stage.
func (h Unimplemented) BeforeFetch(
	_ context.Context,
	_ FetchSeriesContext,
	data FetchSeriesData,
) (FetchSeriesData, error) {
	return data, nil
}

// AfterFetch is a default implementation of the AfterFetch stage.
func (h Unimplemented) AfterFetch(
	_ context.Context,
	_ FetchSeriesContext,
	data FetchSeriesData,
	_ FetchResult,
) (FetchSeriesData, error) {
	return data, nil
}

var _ FetchSeries = Unimplemented{}
