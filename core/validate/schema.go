package validate

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
)

// RootPath is the violation path used for problems with the document as a
// whole, such as text that is not JSON.
const RootPath = "$"

// FieldViolation is a single schema problem. Path joins object keys and
// array indices with dots ("items.0.id").
type FieldViolation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (v FieldViolation) String() string {
	return v.Path + ": " + v.Message
}

// Result is what a [Schema] returns for one parsed value.
type Result[T any] struct {
	Success    bool
	Data       T
	Violations []FieldViolation
}

// Schema validates a decoded JSON value and converts it to T. Implementations
// must not panic and must report at least one violation when Success is false.
type Schema[T any] interface {
	SafeParse(value any) Result[T]
}

// Describer is implemented by schemas that can render themselves as a JSON
// Schema document for the model.
type Describer interface {
	JSONSchema() string
}

// FormatViolations renders violations as "path: message" joined by "; ".
func FormatViolations(violations []FieldViolation) string {
	parts := make([]string, len(violations))
	for i, v := range violations {
		parts[i] = v.String()
	}
	return strings.Join(parts, "; ")
}

// decodeInto converts a generic JSON value into T through a JSON round-trip.
// Type mismatches become violations; the partially decoded value is returned
// with them so callers can still run their own checks.
func decodeInto[T any](value any) (T, []FieldViolation) {
	var data T

	encoded, err := json.Marshal(value)
	if err != nil {
		return data, []FieldViolation{{Path: RootPath, Message: "value is not JSON-encodable: " + err.Error()}}
	}

	if err := json.Unmarshal(encoded, &data); err != nil {
		return data, []FieldViolation{decodeViolation(err)}
	}
	return data, nil
}

func decodeViolation(err error) FieldViolation {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		path := typeErr.Field
		if path == "" {
			path = RootPath
		}
		return FieldViolation{
			Path:    path,
			Message: "expected " + jsonTypeName(typeErr.Type) + ", got " + typeErr.Value,
		}
	}
	return FieldViolation{Path: RootPath, Message: err.Error()}
}

// jsonTypeName names the JSON type that decodes into t.
func jsonTypeName(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	default:
		return t.String()
	}
}
