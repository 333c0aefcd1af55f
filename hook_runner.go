package isr

import (
	"context"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"

	"github.com/mohsenKh75/next-patterns/isrhooks"
)

type hookRunner struct {
	hooks   []isrhooks.Hook
	loggers ldlog.Loggers
}

type fetchExecution struct {
	hooks   []isrhooks.Hook
	data    []isrhooks.FetchSeriesData
	context isrhooks.FetchSeriesContext
}

func (e fetchExecution) withData(data []isrhooks.FetchSeriesData) fetchExecution {
	return fetchExecution{
		hooks:   e.hooks,
		context: e.context,
		data:    data,
	}
}

func newHookRunner(hooks []isrhooks.Hook, loggers ldlog.Loggers) hookRunner {
	copiedHooks := make([]isrhooks.Hook, len(hooks))
	copy(copiedHooks, hooks)
	return hookRunner{
		hooks:   copiedHooks,
		loggers: loggers,
	}
}

func (h hookRunner) prepareFetchSeries(
	operation isrhooks.Operation,
	paramName, id string,
	revalidate time.Duration,
) fetchExecution {
	returnData := make([]isrhooks.FetchSeriesData, len(h.hooks))
	for i := range h.hooks {
		returnData[i] = isrhooks.EmptyFetchSeriesData()
	}
	return fetchExecution{
		hooks:   h.hooks,
		data:    returnData,
		context: isrhooks.NewFetchSeriesContext(operation, paramName, id, revalidate),
	}
}

func (h hookRunner) beforeFetch(ctx context.Context, execution fetchExecution) fetchExecution {
	if len(execution.hooks) == 0 {
		return execution
	}
	returnData := make([]isrhooks.FetchSeriesData, len(execution.hooks))
	for i, hook := range execution.hooks {
		outData, err := hook.BeforeFetch(ctx, execution.context, execution.data[i])
		if err != nil {
			h.loggers.Errorf("During %s of %s, stage \"BeforeFetch\" of hook %q reported error: %s",
				execution.context.Operation(), execution.context.ParamName(), hook.Metadata().Name(), err)
			outData = execution.data[i]
		}
		returnData[i] = outData
	}
	return execution.withData(returnData)
}

func (h hookRunner) afterFetch(ctx context.Context, execution fetchExecution, result isrhooks.FetchResult) fetchExecution {
	if len(execution.hooks) == 0 {
		return execution
	}
	returnData := make([]isrhooks.FetchSeriesData, len(execution.hooks))
	for i := len(execution.hooks) - 1; i >= 0; i-- {
		hook := execution.hooks[i]
		outData, err := hook.AfterFetch(ctx, execution.context, execution.data[i], result)
		if err != nil {
			h.loggers.Errorf("During %s of %s, stage \"AfterFetch\" of hook %q reported error: %s",
				execution.context.Operation(), execution.context.ParamName(), hook.Metadata().Name(), err)
			outData = execution.data[i]
		}
		returnData[i] = outData
	}
	return execution.withData(returnData)
}
