package client

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/leofalp/llmjson/core/parse"
	"github.com/leofalp/llmjson/core/validate"
	"github.com/leofalp/llmjson/providers/ai"
)

type item struct {
	ID int `json:"id" validate:"required"`
}

type payload struct {
	Status string `json:"status" validate:"required,oneof=success error"`
	Data   struct {
		Items []item `json:"items" validate:"required,min=1,dive"`
		Total int    `json:"total" validate:"gte=0"`
	} `json:"data"`
}

const validPayload = "Here is the result:\n\n{\"status\":\"success\",\"data\":{\"items\":[{\"id\":1},{\"id\":2}],\"total\":2}}\n\nDone."

func TestChatJSONValidated_FirstAttemptSucceeds(t *testing.T) {
	provider := &scriptedProvider{steps: []step{reply(validPayload)}}
	sleeper := &recordingSleeper{}
	c := newTestClient(t, provider, sleeper)

	res, err := ChatJSONValidated[payload](context.Background(), c, userRequest("list"), validate.Struct[payload](), 0)
	if err != nil {
		t.Fatalf("ChatJSONValidated() error = %v", err)
	}

	if res.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", res.Attempts)
	}
	if res.Data.Data.Total != 2 || len(res.Data.Data.Items) != 2 {
		t.Errorf("Data = %+v", res.Data)
	}
	if res.ValidationErrors != nil {
		t.Errorf("ValidationErrors = %v, want nil", res.ValidationErrors)
	}
	if len(sleeper.delays) != 0 {
		t.Errorf("slept %v before the first attempt", sleeper.delays)
	}
	if got := provider.requests[0].Model; got != "test-model" {
		t.Errorf("request model = %q, want the config default", got)
	}
	if len(provider.requests[0].OutputSchema) == 0 {
		t.Error("request carries no output schema")
	}
}

func TestChatJSONValidated_ClientErrorIsFatal(t *testing.T) {
	provider := &scriptedProvider{steps: []step{failWith(404), reply(validPayload)}}
	sleeper := &recordingSleeper{}
	c := newTestClient(t, provider, sleeper)

	_, err := ChatJSONValidated[payload](context.Background(), c, userRequest("list"), validate.Struct[payload](), 5)

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 404 {
		t.Fatalf("error = %v, want the 404 APIError", err)
	}
	if errors.Is(err, ErrRetryExhausted) {
		t.Error("a fatal error must not be reported as exhaustion")
	}
	if provider.calls() != 1 {
		t.Errorf("requests = %d, want 1", provider.calls())
	}
	if len(sleeper.delays) != 0 {
		t.Errorf("delays = %v, want none", sleeper.delays)
	}
}

func TestChatJSONValidated_RetryGating(t *testing.T) {
	provider := &scriptedProvider{steps: []step{failWith(429), failWith(500), failWith(500), reply(validPayload)}}
	sleeper := &recordingSleeper{}
	c := newTestClient(t, provider, sleeper)

	res, err := ChatJSONValidated[payload](context.Background(), c, userRequest("list"), validate.Struct[payload](), 4)
	if err != nil {
		t.Fatalf("ChatJSONValidated() error = %v", err)
	}
	if res.Attempts != 4 || provider.calls() != 4 {
		t.Fatalf("attempts = %d, requests = %d, want 4", res.Attempts, provider.calls())
	}

	// The 429 adds a rate-limit wait on top of the regular backoff.
	want := []time.Duration{5 * time.Second, time.Second, 2 * time.Second, 4 * time.Second}
	if diff := cmp.Diff(want, sleeper.delays); diff != "" {
		t.Errorf("delays mismatch (-want +got):\n%s", diff)
	}

	for i, request := range provider.requests[1:] {
		if request.Temperature == nil || *request.Temperature > retryTemperature {
			t.Errorf("retry %d temperature = %v, want <= %v", i+1, request.Temperature, retryTemperature)
		}
		if len(request.Messages) != 1 {
			t.Errorf("retry %d sent %d messages, want the original one without feedback", i+1, len(request.Messages))
		}
	}
}

func TestChatJSONValidated_Exhaustion(t *testing.T) {
	provider := &scriptedProvider{steps: []step{
		reply("I cannot produce that."),
		reply(`{"status": "pending"}`),
		reply("Still nothing."),
	}}
	sleeper := &recordingSleeper{}
	c := newTestClient(t, provider, sleeper)

	_, err := ChatJSONValidated[payload](context.Background(), c, userRequest("list"), validate.Struct[payload](), 3)
	if !errors.Is(err, ErrRetryExhausted) {
		t.Fatalf("error = %v, want ErrRetryExhausted", err)
	}

	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("error %T is not *ExhaustedError", err)
	}
	if len(exhausted.Attempts) != 3 || provider.calls() != 3 {
		t.Fatalf("attempts = %d, requests = %d, want 3", len(exhausted.Attempts), provider.calls())
	}

	wantClasses := []ErrorKind{KindParseFailure, KindValidationFailure, KindParseFailure}
	for i, record := range exhausted.Attempts {
		if record.Class.Kind != wantClasses[i] {
			t.Errorf("attempt %d class = %v, want %v", i+1, record.Class.Kind, wantClasses[i])
		}
	}

	message := err.Error()
	for _, want := range []string{"attempt 1", "attempt 2", "attempt 3", "I cannot produce that.", "status", "Still nothing."} {
		if !strings.Contains(message, want) {
			t.Errorf("error message does not mention %q:\n%s", want, message)
		}
	}

	var extractionErr *ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Error("exhaustion does not unwrap to the last concrete error")
	}
}

func TestChatJSONValidated_FeedbackAndAccounting(t *testing.T) {
	provider := &scriptedProvider{steps: []step{
		reply(`{"status":"success","data":{"items":[{"id":1}],"total":"two"}}`),
		reply(validPayload),
	}}
	sleeper := &recordingSleeper{}
	c := newTestClient(t, provider, sleeper)

	request := userRequest("list")
	request.Temperature = func() *float64 { v := 0.9; return &v }()

	res, err := ChatJSONValidated[payload](context.Background(), c, request, validate.Struct[payload](), 0)
	if err != nil {
		t.Fatalf("ChatJSONValidated() error = %v", err)
	}

	if res.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", res.Attempts)
	}
	if len(res.ValidationErrors) == 0 || res.ValidationErrors[0].Path != "data.total" {
		t.Errorf("ValidationErrors = %v, want a data.total violation", res.ValidationErrors)
	}

	wantUsage := ai.Usage{PromptTokens: 200, CompletionTokens: 100, TotalTokens: 300}
	if diff := cmp.Diff(wantUsage, res.Usage); diff != "" {
		t.Errorf("usage mismatch (-want +got):\n%s", diff)
	}
	if math.Abs(res.Cost-0.0004) > 1e-12 {
		t.Errorf("Cost = %v, want 0.0004", res.Cost)
	}

	retry := provider.requests[1]
	if len(retry.Messages) != 2 {
		t.Fatalf("retry sent %d messages, want original plus feedback", len(retry.Messages))
	}
	if retry.Messages[0] != request.Messages[0] {
		t.Errorf("retry changed the original message: %+v", retry.Messages[0])
	}
	feedback := retry.Messages[1]
	if feedback.Role != ai.RoleUser {
		t.Errorf("feedback role = %q, want user", feedback.Role)
	}
	for _, want := range []string{"data.total", "JSON Schema", `"status"`} {
		if !strings.Contains(feedback.Content, want) {
			t.Errorf("feedback does not mention %q:\n%s", want, feedback.Content)
		}
	}
	if *retry.Temperature != retryTemperature {
		t.Errorf("retry temperature = %v, want %v", *retry.Temperature, retryTemperature)
	}
	if *request.Temperature != 0.9 {
		t.Error("caller's request was modified")
	}
}

func TestChatJSONValidated_CancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	provider := &scriptedProvider{steps: []step{failWith(500), reply(validPayload)}}
	sleeper := &recordingSleeper{hook: cancel}
	c := newTestClient(t, provider, sleeper)

	_, err := ChatJSONValidated[payload](ctx, c, userRequest("list"), validate.Struct[payload](), 3)
	if !errors.Is(err, ErrCancelled) || !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want ErrCancelled wrapping context.Canceled", err)
	}
	if errors.Is(err, ErrRetryExhausted) {
		t.Error("cancellation reported as exhaustion")
	}
	if provider.calls() != 1 {
		t.Errorf("requests = %d, want 1", provider.calls())
	}
}

func TestChatJSONValidated_CancelledInFlight(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	provider := &scriptedProvider{steps: []step{blockUntilDone(cancel), reply(validPayload)}}
	c := newTestClient(t, provider, &recordingSleeper{})

	_, err := ChatJSONValidated[payload](ctx, c, userRequest("list"), validate.Struct[payload](), 3)
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("error = %v, want ErrCancelled", err)
	}
	if provider.calls() != 1 {
		t.Errorf("requests = %d, want 1", provider.calls())
	}
}

func TestChatJSONValidated_AttemptTimeout(t *testing.T) {
	provider := &scriptedProvider{steps: []step{blockUntilDone(nil), reply(validPayload)}}
	sleeper := &recordingSleeper{}
	c := newTestClient(t, provider, sleeper)

	request := userRequest("list")
	request.Timeout = 20 * time.Millisecond

	res, err := ChatJSONValidated[payload](context.Background(), c, request, validate.Struct[payload](), 2)
	if err != nil {
		t.Fatalf("ChatJSONValidated() error = %v", err)
	}
	if res.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", res.Attempts)
	}
	if len(sleeper.delays) != 1 || sleeper.delays[0] != time.Second {
		t.Errorf("delays = %v, want [1s]", sleeper.delays)
	}
}

func TestChatJSONValidated_TimeoutExhaustion(t *testing.T) {
	provider := &scriptedProvider{steps: []step{blockUntilDone(nil)}}
	c := newTestClient(t, provider, &recordingSleeper{})

	request := userRequest("list")
	request.Timeout = 10 * time.Millisecond

	_, err := ChatJSONValidated[payload](context.Background(), c, request, validate.Struct[payload](), 1)

	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("error = %v, want a TimeoutError", err)
	}
	if timeoutErr.Timeout != 10*time.Millisecond {
		t.Errorf("Timeout = %s, want 10ms", timeoutErr.Timeout)
	}
	if !errors.Is(err, ErrRetryExhausted) {
		t.Errorf("error = %v, want ErrRetryExhausted", err)
	}
}

func TestChatJSONValidated_FuncSchema(t *testing.T) {
	provider := &scriptedProvider{steps: []step{reply("[3, -1]"), reply("[3, 1]")}}
	c := newTestClient(t, provider, &recordingSleeper{})

	positive := validate.Func(func(values []int) []validate.FieldViolation {
		for _, v := range values {
			if v <= 0 {
				return []validate.FieldViolation{{Path: validate.RootPath, Message: "values must be positive"}}
			}
		}
		return nil
	})

	res, err := ChatJSONValidated[[]int](context.Background(), c, userRequest("numbers"), positive, 0)
	if err != nil {
		t.Fatalf("ChatJSONValidated() error = %v", err)
	}
	if diff := cmp.Diff([]int{3, 1}, res.Data); diff != "" {
		t.Errorf("Data mismatch (-want +got):\n%s", diff)
	}
	if len(provider.requests[0].OutputSchema) != 0 {
		t.Error("a schema without a JSON Schema must not set an output schema")
	}
}

func TestChatJSON(t *testing.T) {
	type person struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}

	tests := []struct {
		name    string
		content string
		want    person
	}{
		{name: "fenced", content: "```json\n{\"name\": \"Ada\", \"age\": 36}\n```", want: person{Name: "Ada", Age: 36}},
		{name: "unquoted keys", content: "Here: {name: 'Ada', age: 36}", want: person{Name: "Ada", Age: 36}},
		{name: "truncated", content: `{"name": "Ada", "age": 36`, want: person{Name: "Ada", Age: 36}},
		{name: "schema envelope", content: `{"name": {"type": "string", "value": "Ada"}, "age": 36}`, want: person{Name: "Ada", Age: 36}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &scriptedProvider{steps: []step{reply(tt.content)}}
			c := newTestClient(t, provider, &recordingSleeper{})

			res, err := ChatJSON[person](context.Background(), c, userRequest("who"), 1)
			if err != nil {
				t.Fatalf("ChatJSON() error = %v", err)
			}
			if res.Data != tt.want {
				t.Errorf("Data = %+v, want %+v", res.Data, tt.want)
			}
		})
	}
}

func TestChatJSON_NeverInventsValues(t *testing.T) {
	provider := &scriptedProvider{steps: []step{reply(`{"a": 1, "b":`)}}
	c := newTestClient(t, provider, &recordingSleeper{})

	res, err := ChatJSON[map[string]any](context.Background(), c, userRequest("pair"), 1)
	if err == nil {
		t.Fatalf("ChatJSON() = %+v, want a parse failure", res.Data)
	}

	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) || len(exhausted.Attempts) != 1 {
		t.Fatalf("error = %v, want exhaustion after one attempt", err)
	}
	if got := exhausted.Attempts[0].Class.Kind; got != KindParseFailure {
		t.Errorf("attempt class = %v, want %v", got, KindParseFailure)
	}
	var extractionErr *ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Errorf("error does not unwrap to *ExtractionError: %v", err)
	}
	if !errors.Is(err, parse.ErrMissingValue) {
		t.Errorf("error does not report the missing value: %v", err)
	}
}

func TestChatJSON_RetriesAfterMissingValue(t *testing.T) {
	provider := &scriptedProvider{steps: []step{reply(`{"a": 1, "b":`), reply(`{"a": 1, "b": 2}`)}}
	c := newTestClient(t, provider, &recordingSleeper{})

	res, err := ChatJSON[map[string]int](context.Background(), c, userRequest("pair"), 2)
	if err != nil {
		t.Fatalf("ChatJSON() error = %v", err)
	}
	if res.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", res.Attempts)
	}
	if diff := cmp.Diff(map[string]int{"a": 1, "b": 2}, res.Data); diff != "" {
		t.Errorf("Data mismatch (-want +got):\n%s", diff)
	}
}

func TestChatJSON_RetriesWithoutJSON(t *testing.T) {
	provider := &scriptedProvider{steps: []step{reply("Sorry, no data."), reply(`["a", "b"]`)}}
	c := newTestClient(t, provider, &recordingSleeper{})

	res, err := ChatJSON[[]string](context.Background(), c, userRequest("letters"), 0)
	if err != nil {
		t.Fatalf("ChatJSON() error = %v", err)
	}
	if res.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", res.Attempts)
	}
	if !strings.Contains(provider.requests[1].Messages[1].Content, "no JSON object or array") {
		t.Errorf("feedback = %q", provider.requests[1].Messages[1].Content)
	}
}

func TestChatJSON_NilClient(t *testing.T) {
	if _, err := ChatJSON[int](context.Background(), nil, userRequest("x"), 1); err == nil {
		t.Error("ChatJSON(nil client) expected an error")
	}
}
