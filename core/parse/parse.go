package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/leofalp/llmjson/internal/utils"
)

// previewLength bounds the raw text quoted in extraction errors.
const previewLength = 200

// errNotWrapped reports that a value is not a {"type": ..., "value": ...} envelope.
var errNotWrapped = errors.New("not a schema-wrapped value")

// ErrMissingValue is returned by [ParseStringAs] for text in which a property
// has no value, such as output truncated right after `"key":`.
var ErrMissingValue = errors.New("property without a value")

// ParseStringAs converts content into a value of type T using a lenient
// decoder. It is the looser counterpart of [Extract] plus validation: nothing
// is checked beyond what decoding into T implies.
//
// Primitive kinds (string, bool, ints, uints, floats) are converted directly.
// Composite kinds are decoded as JSON; when that fails the text is passed
// through jsonrepair and decoded again, and as a last step values that a model
// wrapped in schema-style {"type": ..., "value": ...} envelopes are unwrapped.
//
// Text that jsonrepair could only fix by inventing a value (see [MissingValue])
// is rejected with [ErrMissingValue] instead of being repaired.
//
// Example:
//
//	type Person struct {
//	    Name string `json:"name"`
//	    Age  int    `json:"age"`
//	}
//
//	person, err := parse.ParseStringAs[Person](`{name: 'John', age: 30}`)
//	n, err := parse.ParseStringAs[int]("42")
func ParseStringAs[T any](content string) (T, error) {
	var result T
	target := reflect.ValueOf(&result).Elem()

	switch target.Kind() {
	case reflect.String:
		if strings.HasPrefix(content, "{") {
			if unwrapped, err := unwrapPrimitive(content); err == nil {
				target.SetString(unwrapped)
				return result, nil
			}
		}
		target.SetString(content)
		return result, nil

	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		err := setPrimitive(target, strings.TrimSpace(content))
		if err == nil {
			return result, nil
		}
		if unwrapped, unwrapErr := unwrapPrimitive(content); unwrapErr == nil {
			if setPrimitive(target, unwrapped) == nil {
				return result, nil
			}
		}
		return result, fmt.Errorf("failed to parse content as %s: %w", target.Kind(), err)

	default:
		return decodeLenient[T](content)
	}
}

// setPrimitive parses text into the primitive value v.
func setPrimitive(v reflect.Value, text string) error {
	switch v.Kind() {
	case reflect.Bool:
		parsed, err := strconv.ParseBool(text)
		if err != nil {
			return err
		}
		v.SetBool(parsed)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		parsed, err := strconv.ParseInt(text, 10, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetInt(parsed)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		parsed, err := strconv.ParseUint(text, 10, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetUint(parsed)
	case reflect.Float32, reflect.Float64:
		parsed, err := strconv.ParseFloat(text, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetFloat(parsed)
	default:
		return fmt.Errorf("unsupported primitive kind %s", v.Kind())
	}
	return nil
}

// decodeLenient decodes composite types, falling back to jsonrepair and then
// to schema-envelope unwrapping.
func decodeLenient[T any](content string) (T, error) {
	var result T

	err := json.Unmarshal([]byte(content), &result)
	if err == nil {
		return result, nil
	}

	if MissingValue(content) {
		return result, fmt.Errorf("failed to unmarshal content as %T: %w", result, ErrMissingValue)
	}

	repaired, repairErr := jsonrepair.JSONRepair(content)
	if repairErr != nil {
		return result, fmt.Errorf("failed to unmarshal content as %T and failed to repair JSON: unmarshal error: %w, repair error: %v", result, err, repairErr)
	}

	err = json.Unmarshal([]byte(repaired), &result)
	if err == nil {
		return result, nil
	}

	if unwrapped, unwrapErr := unwrapSchemaValues(repaired); unwrapErr == nil {
		var retry T
		if json.Unmarshal([]byte(unwrapped), &retry) == nil {
			return retry, nil
		}
	}

	return result, fmt.Errorf("failed to unmarshal repaired JSON as %T: %w (repaired: %s)", result, err, Preview(repaired))
}

// unwrapPrimitive returns the textual form of the value held by a
// {"type": ..., "value": ...} envelope.
func unwrapPrimitive(content string) (string, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return "", err
	}

	value, ok := envelopeValue(data)
	if !ok {
		return "", errNotWrapped
	}

	switch v := value.(type) {
	case string:
		return v, nil
	case float64, bool:
		return fmt.Sprintf("%v", v), nil
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(encoded), nil
	}
}

// envelopeValue reports whether m is exactly {"type": ..., "value": ...}, which
// is what models emit when they confuse a JSON schema with the data it describes.
func envelopeValue(m map[string]any) (any, bool) {
	if len(m) != 2 {
		return nil, false
	}
	if _, hasType := m["type"]; !hasType {
		return nil, false
	}
	value, hasValue := m["value"]
	return value, hasValue
}

// unwrapSchemaValues replaces every envelope in the document with its value.
//
//	{"name": {"type": "string", "value": "John"}}  ->  {"name": "John"}
func unwrapSchemaValues(text string) (string, error) {
	var data any
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return "", err
	}

	encoded, err := json.Marshal(unwrapRecursive(data))
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func unwrapRecursive(data any) any {
	switch v := data.(type) {
	case map[string]any:
		if value, ok := envelopeValue(v); ok {
			return unwrapRecursive(value)
		}
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[key] = unwrapRecursive(val)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = unwrapRecursive(val)
		}
		return out
	default:
		return data
	}
}

// Preview returns a short single-line excerpt of text for error messages and
// logs. Runs of whitespace collapse to one space.
func Preview(text string) string {
	return utils.TruncateString(strings.Join(strings.Fields(text), " "), previewLength)
}
