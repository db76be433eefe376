package validate

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// Outcome is the result of validating one piece of text. Violations is empty
// exactly when Valid is true.
type Outcome[T any] struct {
	Valid      bool
	Value      T
	Violations []FieldViolation
}

// Validate parses text as JSON and runs schema over the result. Text that is
// not a single JSON value yields one violation at [RootPath]. Validate never
// panics.
func Validate[T any](text string, schema Schema[T]) Outcome[T] {
	value, err := parseJSON(text)
	if err != nil {
		return Outcome[T]{Violations: []FieldViolation{{Path: RootPath, Message: "invalid JSON: " + err.Error()}}}
	}

	result := schema.SafeParse(value)
	if !result.Success {
		violations := result.Violations
		if len(violations) == 0 {
			violations = []FieldViolation{{Path: RootPath, Message: "rejected by schema"}}
		}
		return Outcome[T]{Violations: violations}
	}

	return Outcome[T]{Valid: true, Value: result.Data}
}

// parseJSON decodes exactly one JSON value. Numbers are kept as json.Number
// so large integers survive the round-trip into T.
func parseJSON(text string) (any, error) {
	decoder := json.NewDecoder(strings.NewReader(text))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after the top-level value")
	}
	return value, nil
}
