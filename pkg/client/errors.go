package client

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError is returned when the backend answers with a non-2xx status.
// For chat requests it is returned before any of the stream is decoded.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int

	// Body holds the start of the response body, if any.
	Body string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: backend returned %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// IsNotFound reports whether err is a StatusError with status 404.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}
