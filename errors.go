package isr

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by every not-found outcome returned from ExtractID and FetchData.
//
//	id, err := handle.ExtractID(params)
//	if errors.Is(err, isr.ErrNotFound) {
//	    http.NotFound(w, r)
//	    return
//	}
var ErrNotFound = errors.New("not found")

// NotFoundError is the not-found outcome of a route. It wraps the upstream error, if there was one,
// so that it can be inspected or logged, but callers should treat every NotFoundError the same way.
type NotFoundError struct {
	// ParamName is the route parameter name of the handle.
	ParamName string

	// Value is the raw parameter value or the string form of the identifier. It may be empty.
	Value string

	cause error
}

func newNotFoundError(paramName, value string, cause error) *NotFoundError {
	return &NotFoundError{ParamName: paramName, Value: value, cause: cause}
}

func (e *NotFoundError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.ParamName, ErrNotFound)
	}
	return fmt.Sprintf("%s %q: %s", e.ParamName, e.Value, ErrNotFound)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Unwrap returns the upstream error that caused the outcome, or nil.
func (e *NotFoundError) Unwrap() error {
	return e.cause
}

// IsNotFound is shorthand for errors.Is(err, ErrNotFound).
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
