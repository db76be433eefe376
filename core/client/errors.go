package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/leofalp/llmjson/core/validate"
	"github.com/leofalp/llmjson/providers/ai"
)

var (
	// ErrRetryExhausted is wrapped by [*ExhaustedError] when every attempt of
	// the budget failed.
	ErrRetryExhausted = errors.New("llmjson: all attempts exhausted")

	// ErrCancelled is returned when the caller's context ends a call. The
	// returned error also wraps the context's own error.
	ErrCancelled = errors.New("llmjson: call cancelled")
)

// APIError is a non-2xx reply or a transport failure of the completion
// endpoint.
type APIError = ai.APIError

// TimeoutError reports that one attempt exceeded its deadline.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timed out after %s", e.Timeout)
}

func (e *TimeoutError) Unwrap() error {
	return context.DeadlineExceeded
}

// ExtractionError reports that no usable JSON could be recovered from a
// completion. Err is set when a candidate was found but could not be decoded.
type ExtractionError struct {
	Preview string
	Err     error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("could not decode JSON from response: %v (response: %q)", e.Err, e.Preview)
	}
	return fmt.Sprintf("no JSON object or array found in response: %q", e.Preview)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// ValidationError reports that the extracted JSON did not satisfy the schema.
type ValidationError struct {
	Violations []validate.FieldViolation
}

func (e *ValidationError) Error() string {
	return "response failed validation: " + validate.FormatViolations(e.Violations)
}

// ExhaustedError is returned when the attempt budget ran out. It unwraps to
// both [ErrRetryExhausted] and the error of the last attempt.
type ExhaustedError struct {
	Attempts []AttemptRecord
}

// Last returns the error of the final attempt.
func (e *ExhaustedError) Last() error {
	if len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[len(e.Attempts)-1].Err
}

func (e *ExhaustedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s after %d attempts", ErrRetryExhausted.Error(), len(e.Attempts))
	for _, record := range e.Attempts {
		fmt.Fprintf(&b, "\n  attempt %d (%s): %v", record.Index+1, record.Class, record.Err)
	}
	return b.String()
}

func (e *ExhaustedError) Unwrap() []error {
	if last := e.Last(); last != nil {
		return []error{ErrRetryExhausted, last}
	}
	return []error{ErrRetryExhausted}
}

// cancelled builds the error returned when ctx ended the call.
func cancelled(ctx context.Context) error {
	cause := context.Cause(ctx)
	if cause == nil {
		cause = context.Canceled
	}
	return fmt.Errorf("%w: %w", ErrCancelled, cause)
}
