package client

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/leofalp/llmjson/core/parse"
	"github.com/leofalp/llmjson/core/validate"
	"github.com/leofalp/llmjson/internal/jsonschema"
	"github.com/leofalp/llmjson/internal/utils"
	"github.com/leofalp/llmjson/providers/ai"
	"github.com/leofalp/llmjson/providers/observability"
)

var errNilClient = errors.New("llmjson: nil client")

// JSONResult is a decoded value with the accounting of the whole call.
type JSONResult[T any] struct {
	Data T

	// Usage and Cost sum every attempt, failed ones included.
	Usage ai.Usage
	Cost  float64

	// Attempts is the number of requests sent, the successful one included.
	Attempts int

	// ValidationErrors holds the violations of the most recent attempt that
	// failed validation before success. It is nil when no attempt failed
	// validation.
	ValidationErrors []validate.FieldViolation
}

// decodeFunc turns completion text into T, or returns an *ExtractionError or
// *ValidationError.
type decodeFunc[T any] func(content string) (T, parse.Strategy, error)

// ChatJSON extracts JSON from the completion and decodes it leniently into T
// without schema validation. Values that need repair are accepted as the
// repair produced them, but a property whose value was never written fails
// the attempt as a parse failure.
//
// maxAttempts overrides the configured budget when positive.
func ChatJSON[T any](ctx context.Context, c *Client, request ai.ChatRequest, maxAttempts int) (*JSONResult[T], error) {
	schemaJSON := ""
	if schema, err := jsonschema.For[T](); err == nil {
		schemaJSON = schema.String()
	}

	return run(ctx, c, request, maxAttempts, schemaJSON, func(content string) (T, parse.Strategy, error) {
		var zero T

		text, strategy, ok := lenientCandidate(content)
		if !ok {
			return zero, 0, &ExtractionError{Preview: parse.Preview(content)}
		}

		value, err := parse.ParseStringAs[T](text)
		if err != nil {
			return zero, strategy, &ExtractionError{Preview: parse.Preview(content), Err: err}
		}
		return value, strategy, nil
	})
}

// lenientCandidate runs the extraction cascade. When the cascade finds
// nothing, the text from the first '{' or '[' is handed to the lenient decoder
// as is, so output such as unquoted keys still has a chance.
func lenientCandidate(content string) (string, parse.Strategy, bool) {
	if candidate, ok := parse.Extract(content); ok {
		return candidate.Text, candidate.Strategy, true
	}

	start := strings.IndexAny(content, "{[")
	if start < 0 {
		return "", 0, false
	}
	return content[start:], 0, true
}

// ChatJSONValidated extracts JSON from the completion and validates it with
// schema, retrying with feedback until a value passes or the budget is spent.
// When schema implements [validate.Describer] its JSON Schema is included in
// the feedback and sent as the request's output schema.
//
// maxAttempts overrides the configured budget when positive.
func ChatJSONValidated[T any](ctx context.Context, c *Client, request ai.ChatRequest, schema validate.Schema[T], maxAttempts int) (*JSONResult[T], error) {
	schemaJSON := ""
	if describer, ok := schema.(validate.Describer); ok {
		schemaJSON = describer.JSONSchema()
	}

	return run(ctx, c, request, maxAttempts, schemaJSON, func(content string) (T, parse.Strategy, error) {
		var zero T

		candidate, ok := parse.Extract(content)
		if !ok {
			return zero, 0, &ExtractionError{Preview: parse.Preview(content)}
		}

		outcome := validate.Validate(candidate.Text, schema)
		if !outcome.Valid {
			return zero, candidate.Strategy, &ValidationError{Violations: outcome.Violations}
		}
		return outcome.Value, candidate.Strategy, nil
	})
}

// run is the retry loop shared by the JSON calls. Attempts are strictly
// sequential; attempt n > 0 waits Backoff(n-1) first.
func run[T any](ctx context.Context, c *Client, request ai.ChatRequest, maxAttempts int, schemaJSON string, decode decodeFunc[T]) (*JSONResult[T], error) {
	if c == nil {
		return nil, errNilClient
	}

	budget := c.config.Budget
	if maxAttempts > 0 {
		budget.MaxAttempts = maxAttempts
	}

	request = c.prepare(request)
	if len(request.OutputSchema) == 0 && describesObject(schemaJSON) {
		request.OutputSchema = json.RawMessage(schemaJSON)
	}

	callID := uuid.NewString()
	ctx, span := c.observer.StartSpan(ctx, observability.SpanChatJSON,
		observability.String(observability.AttrCallID, callID),
		observability.String(observability.AttrLLMModel, request.Model),
		observability.Int(observability.AttrMaxAttempts, budget.MaxAttempts),
	)
	defer span.End()

	result := &JSONResult[T]{}
	records := make([]AttemptRecord, 0, budget.MaxAttempts)
	feedback := ""

	fail := func(err error) (*JSONResult[T], error) {
		span.RecordError(err)
		span.SetStatus(observability.StatusError, Classify(err).String())
		span.SetAttributes(
			observability.Int(observability.AttrAttempts, len(records)),
			observability.Int(observability.AttrLLMTokensTotal, result.Usage.TotalTokens),
			observability.Float64(observability.AttrLLMCost, result.Cost),
		)
		return nil, err
	}

	for attempt := 0; attempt < budget.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := budget.Backoff(attempt-1, c.jitter())
			span.AddEvent(observability.EventBackoff,
				observability.Int(observability.AttrAttempt, attempt),
				observability.Duration(observability.AttrBackoff, delay),
			)
			if err := c.sleep(ctx, delay); err != nil {
				return fail(cancelled(ctx))
			}
		}
		if ctx.Err() != nil {
			return fail(cancelled(ctx))
		}

		attemptRequest := request
		if attempt > 0 {
			attemptRequest = retryRequest(request, feedback)
		}

		span.AddEvent(observability.EventAttemptStart, observability.Int(observability.AttrAttempt, attempt))
		c.observer.Counter(observability.MetricAttempts).Add(ctx, 1,
			observability.String(observability.AttrLLMModel, request.Model),
		)

		record := runAttempt(ctx, c, attemptRequest, attempt, result, decode)
		if record.Err == nil {
			result.Attempts = attempt + 1
			span.AddEvent(observability.EventAttemptSuccess,
				observability.Int(observability.AttrAttempt, attempt),
				observability.String(observability.AttrStrategy, record.Strategy.String()),
			)
			span.SetAttributes(
				observability.Int(observability.AttrAttempts, result.Attempts),
				observability.Int(observability.AttrLLMTokensTotal, result.Usage.TotalTokens),
				observability.Float64(observability.AttrLLMCost, result.Cost),
			)
			span.SetStatus(observability.StatusOK, "")
			return result, nil
		}

		if errors.Is(record.Err, ErrCancelled) || ctx.Err() != nil {
			return fail(cancelled(ctx))
		}

		records = append(records, record)
		span.AddEvent(observability.EventAttemptFailed,
			observability.Int(observability.AttrAttempt, attempt),
			observability.String(observability.AttrErrorClass, record.Class.String()),
			observability.Error(record.Err),
		)

		if !record.Class.Retryable() {
			c.observer.Error(ctx, "llm call failed",
				observability.String(observability.AttrCallID, callID),
				observability.String(observability.AttrErrorClass, record.Class.String()),
				observability.Error(record.Err),
			)
			return fail(record.Err)
		}

		c.observer.Warn(ctx, "llm attempt failed",
			observability.String(observability.AttrCallID, callID),
			observability.Int(observability.AttrAttempt, attempt),
			observability.String(observability.AttrErrorClass, record.Class.String()),
			observability.Error(record.Err),
		)

		var validationErr *ValidationError
		if errors.As(record.Err, &validationErr) {
			result.ValidationErrors = validationErr.Violations
		}
		if message := feedbackMessage(record.Err, schemaJSON); message != "" {
			feedback = message
		}

		if record.Class.Kind == KindRateLimited && attempt+1 < budget.MaxAttempts {
			delay := RateLimitBackoff(attempt, c.jitter())
			span.AddEvent(observability.EventBackoff,
				observability.Int(observability.AttrAttempt, attempt),
				observability.Duration(observability.AttrBackoff, delay),
				observability.Int(observability.AttrHTTPStatusCode, record.Class.Status),
			)
			if err := c.sleep(ctx, delay); err != nil {
				return fail(cancelled(ctx))
			}
		}
	}

	return fail(&ExhaustedError{Attempts: records})
}

// describesObject reports whether schemaJSON is a JSON Schema for an object.
// Structured-output endpoints only accept object roots.
func describesObject(schemaJSON string) bool {
	return gjson.Valid(schemaJSON) && gjson.Get(schemaJSON, "type").String() == "object"
}

// runAttempt sends one request and decodes its content. Usage and cost are
// added to result whether or not the attempt succeeds; the decoded value is
// stored in result.Data on success.
func runAttempt[T any](ctx context.Context, c *Client, request ai.ChatRequest, index int, result *JSONResult[T], decode decodeFunc[T]) AttemptRecord {
	record := AttemptRecord{Index: index, Messages: request.Messages, Outcome: OutcomeFailed}
	timer := utils.NewTimer()
	response, err := c.send(ctx, request)
	record.Duration = timer.Stop()

	if response != nil {
		result.Usage.Add(response.Usage)
		result.Cost += c.costOf(request.Model, response)
	}
	if err != nil {
		record.Err = err
		record.Class = Classify(err)
		return record
	}

	record.ResponseText = response.Content
	value, strategy, err := decode(response.Content)
	record.Strategy = strategy
	if err != nil {
		record.Err = err
		record.Class = Classify(err)
		return record
	}

	result.Data = value
	record.Outcome = OutcomeSuccess
	return record
}
