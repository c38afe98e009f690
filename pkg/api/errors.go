package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrTransport marks a request that never produced a usable response:
// connection failures, timeouts, cancellations and undecodable bodies.
var ErrTransport = errors.New("transport failure")

// HTTPError is returned when the server answered with a non-2xx status.
// Message is the server supplied {message} field, verbatim.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("server error: %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

// IsTransport reports whether err is a transport level failure.
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// AsHTTPError unwraps err into an *HTTPError if it is one.
func AsHTTPError(err error) (*HTTPError, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}

func transportErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrTransport, err)
}
