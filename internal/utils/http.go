package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/leofalp/llmjson/providers/ai"
	"github.com/leofalp/llmjson/providers/observability"
)

// maxErrorBodyLength bounds the response body kept on an *ai.APIError.
const maxErrorBodyLength = 2000

// ErrMalformedResponse is wrapped when a 2xx reply cannot be decoded.
var ErrMalformedResponse = errors.New("malformed response body")

// errorMessagePaths are the gjson paths where OpenAI-compatible gateways put
// a human-readable error message, in lookup order.
var errorMessagePaths = []string{"error.message", "error", "message", "detail", "error_description"}

// DoPostSync performs a synchronous HTTP POST with a JSON body and decodes the
// JSON response into OutputStruct.
//
// Failures are reported as *ai.APIError:
//   - transport errors (including context cancellation) have StatusCode 0 and
//     wrap the underlying error, so errors.Is(err, context.Canceled) holds
//   - non-2xx replies carry the status, the endpoint's message and a
//     truncated body
//   - a 2xx body that does not decode wraps [ErrMalformedResponse]
//
// The response body is always closed; a close failure is logged and never
// replaces the returned error.
func DoPostSync[OutputStruct any](ctx context.Context, client *http.Client, url string, apiKey string, body any) (*http.Response, *OutputStruct, error) {
	span := observability.SpanFromContext(ctx)

	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, nil, fmt.Errorf("error marshaling body: %w", err)
	}

	if span != nil {
		span.AddEvent(observability.EventHTTPRequestPrepared,
			observability.String(observability.AttrHTTPMethod, http.MethodPost),
			observability.String(observability.AttrHTTPURL, url),
			observability.Int(observability.AttrHTTPRequestBodySize, len(jsonBody)),
		)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	requestStart := time.Now()
	res, err := httpClient.Do(req)
	requestDuration := time.Since(requestStart)

	if err != nil {
		if span != nil {
			span.AddEvent(observability.EventHTTPRequestError,
				observability.Error(err),
				observability.Duration(observability.AttrHTTPDuration, requestDuration),
			)
		}
		return nil, nil, &ai.APIError{Err: err}
	}
	defer func(Body io.ReadCloser) {
		if closeErr := Body.Close(); closeErr != nil {
			slog.Warn("failed to close response body", "error", closeErr.Error(), "url", url)
		}
	}(res.Body)

	respBody, err := io.ReadAll(res.Body)
	if err != nil {
		return res, nil, &ai.APIError{Err: fmt.Errorf("error reading response body: %w", err)}
	}

	if span != nil {
		span.AddEvent(observability.EventHTTPResponse,
			observability.Int(observability.AttrHTTPStatusCode, res.StatusCode),
			observability.Int(observability.AttrHTTPResponseBodySize, len(respBody)),
			observability.Duration(observability.AttrHTTPDuration, requestDuration),
		)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return res, nil, &ai.APIError{
			StatusCode: res.StatusCode,
			Message:    ErrorMessage(respBody),
			Body:       TruncateString(string(respBody), maxErrorBodyLength),
		}
	}

	var resStruct OutputStruct
	if err = json.Unmarshal(respBody, &resStruct); err != nil {
		return res, nil, &ai.APIError{
			Body: TruncateString(string(respBody), maxErrorBodyLength),
			Err:  fmt.Errorf("%w (status %d): %v", ErrMalformedResponse, res.StatusCode, err),
		}
	}

	return res, &resStruct, nil
}

// ErrorMessage returns the error message carried by a JSON error body, or an
// empty string when the body is not JSON or has no known message field.
func ErrorMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	for _, path := range errorMessagePaths {
		result := gjson.GetBytes(body, path)
		if result.Type == gjson.String && result.Str != "" {
			return result.Str
		}
	}
	return ""
}
