package sharedtest

import (
	"context"
	"sync"

	"github.com/mohsenKh75/next-patterns/isrhooks"
)

// HookStage is the stage of a hook being executed.
type HookStage string

const (
	// HookStageBeforeFetch is the stage executed before a fetch.
	HookStageBeforeFetch HookStage = "before"
	// HookStageAfterFetch is the stage executed after a fetch.
	HookStageAfterFetch HookStage = "after"
)

// HookCall is one recorded invocation of a TestHook stage.
type HookCall struct {
	HookName      string
	Stage         HookStage
	SeriesContext isrhooks.FetchSeriesContext
	SeriesData    isrhooks.FetchSeriesData
	Result        isrhooks.FetchResult
}

// HookRecorder collects the calls of any number of TestHooks in the order they happened.
type HookRecorder struct {
	calls []HookCall
	lock  sync.Mutex
}

// Calls returns a copy of the recorded calls.
func (r *HookRecorder) Calls() []HookCall {
	r.lock.Lock()
	defer r.lock.Unlock()
	ret := make([]HookCall, len(r.calls))
	copy(ret, r.calls)
	return ret
}

func (r *HookRecorder) add(call HookCall) {
	r.lock.Lock()
	r.calls = append(r.calls, call)
	r.lock.Unlock()
}

// TestHook is a hook for testing that records its calls and can inject behavior.
type TestHook struct {
	metadata     isrhooks.Metadata
	recorder     *HookRecorder
	BeforeInject func(context.Context, isrhooks.FetchSeriesContext,
		isrhooks.FetchSeriesData) (isrhooks.FetchSeriesData, error)
	AfterInject func(context.Context, isrhooks.FetchSeriesContext,
		isrhooks.FetchSeriesData, isrhooks.FetchResult) (isrhooks.FetchSeriesData, error)
}

// NewTestHook creates a new test hook that records into recorder.
func NewTestHook(name string, recorder *HookRecorder) *TestHook {
	return &TestHook{
		metadata: isrhooks.NewMetadata(name),
		recorder: recorder,
	}
}

// Metadata gets the metadata for the hook.
func (h *TestHook) Metadata() isrhooks.Metadata {
	return h.metadata
}

// BeforeFetch testing implementation of the BeforeFetch stage.
func (h *TestHook) BeforeFetch(
	ctx context.Context,
	seriesContext isrhooks.FetchSeriesContext,
	data isrhooks.FetchSeriesData,
) (isrhooks.FetchSeriesData, error) {
	h.recorder.add(HookCall{HookName: h.metadata.Name(), Stage: HookStageBeforeFetch,
		SeriesContext: seriesContext, SeriesData: data})
	if h.BeforeInject != nil {
		return h.BeforeInject(ctx, seriesContext, data)
	}
	return data, nil
}

// AfterFetch testing implementation of the AfterFetch stage.
func (h *TestHook) AfterFetch(
	ctx context.Context,
	seriesContext isrhooks.FetchSeriesContext,
	data isrhooks.FetchSeriesData,
	result isrhooks.FetchResult,
) (isrhooks.FetchSeriesData, error) {
	h.recorder.add(HookCall{HookName: h.metadata.Name(), Stage: HookStageAfterFetch,
		SeriesContext: seriesContext, SeriesData: data, Result: result})
	if h.AfterInject != nil {
		return h.AfterInject(ctx, seriesContext, data, result)
	}
	return data, nil
}
