package isrhooks

import "time"

// Operation identifies which fetch a series belongs to.
type Operation string

const (
	// OperationListFetch is the list fetch made while generating static params.
	OperationListFetch Operation = "listFetch"
	// OperationFetchByID is the detail fetch made for a single identifier.
	OperationFetchByID Operation = "fetchById"
)

// FetchSeriesContext contains contextual information for the execution of stages in the fetch series.
type FetchSeriesContext struct {
	operation  Operation
	paramName  string
	id         string
	revalidate time.Duration
}

// NewFetchSeriesContext creates a new FetchSeriesContext. Hook implementations do not need to use
// this function.
func NewFetchSeriesContext(operation Operation, paramName, id string, revalidate time.Duration) FetchSeriesContext {
	return FetchSeriesContext{
		operation:  operation,
		paramName:  paramName,
		id:         id,
		revalidate: revalidate,
	}
}

// Operation returns the kind of fetch.
func (c FetchSeriesContext) Operation() Operation {
	return c.operation
}

// ParamName returns the route parameter name configured for the handle.
func (c FetchSeriesContext) ParamName() string {
	return c.paramName
}

// ID returns the string form of the identifier being fetched. It is empty for a list fetch.
func (c FetchSeriesContext) ID() string {
	return c.id
}

// Revalidate returns the revalidation interval passed to the fetch.
func (c FetchSeriesContext) Revalidate() time.Duration {
	return c.revalidate
}
