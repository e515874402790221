package api

import "fmt"

// NetworkError is a transport-level failure (DNS, connect, timeout, or a
// non-2xx HTTP status from the server). It is the only retryable error.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("network error: %v", e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// APIError is a rejection from the Al Adhan API itself: the HTTP exchange
// succeeded but the response carried a non-200 `code`. Not retryable.
type APIError struct {
	Code   int
	Status string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: code=%d status=%s", e.Code, e.Status)
}

// ParseError is malformed or incomplete response data. Not retryable.
type ParseError struct {
	Msg string
}

func (e *ParseError) Error() string { return "parse error: " + e.Msg }
