package catalogapi

import (
	"errors"
	"fmt"
	"net/http"
)

// httpStatusError is returned for any non-2xx response. Its message includes the response body, or
// the standard status text if the body is empty.
type httpStatusError struct {
	Message string
	Code    int
}

func (e httpStatusError) Error() string {
	return e.Message
}

func newHTTPStatusError(statusCode int, body []byte) httpStatusError {
	text := string(body)
	if text == "" {
		text = http.StatusText(statusCode)
	}
	return httpStatusError{
		Message: fmt.Sprintf("API Error (%d): %s", statusCode, text),
		Code:    statusCode,
	}
}

type malformedJSONError struct {
	innerError error
}

func (e malformedJSONError) Error() string {
	return "Failed to parse response as JSON"
}

func (e malformedJSONError) Unwrap() error {
	return e.innerError
}

// requestAbortedError is returned when the context of a request was cancelled or timed out before
// the response was read. It wraps the context error.
type requestAbortedError struct {
	cause error
}

func (e requestAbortedError) Error() string {
	return "request was aborted"
}

func (e requestAbortedError) Unwrap() error {
	return e.cause
}

// StatusCode returns the HTTP status of a response error from the client, or zero if err is not
// one.
func StatusCode(err error) int {
	var se httpStatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}
