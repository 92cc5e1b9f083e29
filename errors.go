package chatgpt

import (
	"errors"
	"fmt"
)

// ConnectionError is returned when a request could not be sent, or its
// response could not be read, because of a transport failure. This includes
// DNS, dial and TLS errors as well as context cancellation.
type ConnectionError struct {
	// Op is the HTTP method of the failed request.
	Op string

	// URL is the full URL of the failed request.
	URL string

	// Err is the underlying transport error.
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// StatusError is returned when the API responds with a non-2xx status code.
//
// The response body is kept verbatim, since OpenAI-compatible servers do not
// agree on the shape of their error documents.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status: %d, message: %s", e.StatusCode, e.Body)
}

// JSONParseError is returned when a response body (or a value handed to
// [FromValue]) is not the JSON that was expected.
type JSONParseError struct {
	Body []byte
	Err  error
}

func (e *JSONParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("invalid JSON: %q", truncate(e.Body, 256))
	}
	return fmt.Sprintf("invalid JSON: %v: %q", e.Err, truncate(e.Body, 256))
}

func (e *JSONParseError) Unwrap() error {
	return e.Err
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}

var errNilRequest = errors.New("request must not be nil")
