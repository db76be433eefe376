package ai

import "fmt"

// APIError describes a failed round-trip with a model endpoint. StatusCode is
// zero when the request never produced an HTTP response (DNS failure,
// connection reset, aborted body read); Err then holds the transport error.
type APIError struct {
	StatusCode int
	// Message is the human-readable error reported by the endpoint, if any.
	Message string
	// Body is the raw response body, possibly truncated.
	Body string
	Err  error
}

func (e *APIError) Error() string {
	switch {
	case e.StatusCode == 0 && e.Err != nil:
		return fmt.Sprintf("request failed: %v", e.Err)
	case e.Message != "":
		return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
	case e.Body != "":
		return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("API error (status %d)", e.StatusCode)
	}
}

func (e *APIError) Unwrap() error {
	return e.Err
}
