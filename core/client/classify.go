package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind is the coarse category of an attempt failure.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindTimeout
	KindServerError
	KindRateLimited
	KindClientError
	KindParseFailure
	KindValidationFailure
)

var kindNames = map[ErrorKind]string{
	KindNone:              "none",
	KindTimeout:           "timeout",
	KindServerError:       "server_error",
	KindRateLimited:       "rate_limited",
	KindClientError:       "client_error",
	KindParseFailure:      "parse_failure",
	KindValidationFailure: "validation_failure",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ErrorClass is the classification of one failed attempt. Status is the HTTP
// status for the server, rate-limit and client kinds, and zero otherwise or
// when no response was received.
type ErrorClass struct {
	Kind   ErrorKind
	Status int
}

// Retryable reports whether another attempt may succeed.
func (c ErrorClass) Retryable() bool {
	return c.Kind != KindNone && c.Kind != KindClientError
}

func (c ErrorClass) String() string {
	switch c.Kind {
	case KindServerError, KindRateLimited, KindClientError:
		return fmt.Sprintf("%s(%d)", c.Kind, c.Status)
	default:
		return c.Kind.String()
	}
}

// Classify maps an attempt error to exactly one class. It is pure: the result
// depends only on err.
//
// Transport failures and undecodable 2xx bodies carry no status and are
// classified as ServerError(0). Errors of unknown origin are ClientError(0),
// which stops the retry loop.
func Classify(err error) ErrorClass {
	if err == nil {
		return ErrorClass{}
	}

	var (
		timeoutErr    *TimeoutError
		validationErr *ValidationError
		extractionErr *ExtractionError
		apiErr        *APIError
	)

	switch {
	case errors.As(err, &timeoutErr):
		return ErrorClass{Kind: KindTimeout}
	case errors.As(err, &validationErr):
		return ErrorClass{Kind: KindValidationFailure}
	case errors.As(err, &extractionErr):
		return ErrorClass{Kind: KindParseFailure}
	case errors.As(err, &apiErr):
		return classifyStatus(apiErr.StatusCode)
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorClass{Kind: KindTimeout}
	default:
		return ErrorClass{Kind: KindClientError}
	}
}

func classifyStatus(status int) ErrorClass {
	switch {
	case status == http.StatusTooManyRequests:
		return ErrorClass{Kind: KindRateLimited, Status: status}
	case status >= 400 && status < 500:
		return ErrorClass{Kind: KindClientError, Status: status}
	default:
		return ErrorClass{Kind: KindServerError, Status: status}
	}
}
