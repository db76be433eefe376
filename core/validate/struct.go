package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/leofalp/llmjson/internal/jsonschema"
)

// StructSchema validates values against the `validate` tags of T using
// go-playground/validator. T may be a struct, a pointer to a struct, or a
// slice or map of them. Violation paths use JSON field names.
type StructSchema[T any] struct {
	validate   *validator.Validate
	schemaJSON string
}

// Struct builds a [StructSchema] for T. The validator instance is created
// once here and reused by every SafeParse call.
func Struct[T any]() *StructSchema[T] {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return field.Name
		default:
			return name
		}
	})

	s := &StructSchema[T]{validate: v}
	if schema, err := jsonschema.For[T](); err == nil {
		s.schemaJSON = schema.String()
	}
	return s
}

// Validator exposes the underlying validator, for registering custom rules.
func (s *StructSchema[T]) Validator() *validator.Validate {
	return s.validate
}

// JSONSchema returns the JSON Schema derived from T, or "" if T could not be
// described.
func (s *StructSchema[T]) JSONSchema() string {
	return s.schemaJSON
}

// SafeParse decodes value into T and runs the tag rules. Type mismatches and
// rule failures are reported together; a rule failure on a field that already
// has a type mismatch is dropped.
func (s *StructSchema[T]) SafeParse(value any) Result[T] {
	data, violations := decodeInto[T](value)

	seen := make(map[string]bool, len(violations))
	for _, v := range violations {
		seen[v.Path] = true
	}

	for _, v := range s.check(data) {
		if !seen[v.Path] {
			violations = append(violations, v)
		}
	}

	if len(violations) > 0 {
		return Result[T]{Violations: violations}
	}
	return Result[T]{Success: true, Data: data}
}

func (s *StructSchema[T]) check(data T) []FieldViolation {
	target := reflect.ValueOf(data)
	for target.Kind() == reflect.Pointer {
		if target.IsNil() {
			return []FieldViolation{{Path: RootPath, Message: "is required"}}
		}
		target = target.Elem()
	}

	var err error
	switch target.Kind() {
	case reflect.Struct:
		err = s.validate.Struct(target.Interface())
	case reflect.Slice, reflect.Array, reflect.Map:
		err = s.validate.Var(target.Interface(), "dive")
	default:
		return nil
	}
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return []FieldViolation{{Path: RootPath, Message: err.Error()}}
	}

	violations := make([]FieldViolation, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		violations = append(violations, FieldViolation{
			Path:    violationPath(fe.Namespace(), target.Kind() == reflect.Struct),
			Message: violationMessage(fe),
		})
	}
	return violations
}

// violationPath turns a validator namespace such as "Order.items[0].id" into
// "items.0.id". Struct namespaces start with the type name, which is dropped.
func violationPath(namespace string, hasTypePrefix bool) string {
	if hasTypePrefix {
		if _, rest, found := strings.Cut(namespace, "."); found {
			namespace = rest
		} else {
			namespace = ""
		}
	}

	replacer := strings.NewReplacer("[", ".", "]", "")
	path := strings.Trim(replacer.Replace(namespace), ".")
	if path == "" {
		return RootPath
	}
	return path
}

// violationMessage renders a rule failure the way a model can act on it:
// allowed sets and numeric bounds are spelled out.
func violationMessage(fe validator.FieldError) string {
	param := fe.Param()

	switch fe.Tag() {
	case "required", "required_if", "required_unless", "required_with", "required_without":
		return "is required"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	case "min", "gte":
		return lowerBoundMessage(fe.Kind(), param, false)
	case "gt":
		return lowerBoundMessage(fe.Kind(), param, true)
	case "max", "lte":
		return upperBoundMessage(fe.Kind(), param, false)
	case "lt":
		return upperBoundMessage(fe.Kind(), param, true)
	case "len":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("must be exactly %s characters long", param)
		case reflect.Slice, reflect.Array, reflect.Map:
			return fmt.Sprintf("must contain exactly %s items", param)
		default:
			return "must equal " + param
		}
	case "eq":
		return "must equal " + param
	case "ne":
		return "must not equal " + param
	case "email":
		return "must be a valid email address"
	case "url", "uri", "http_url":
		return "must be a valid URL"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "datetime":
		return "must be a date-time in layout " + param
	default:
		if param != "" {
			return fmt.Sprintf("failed %q rule (%s)", fe.Tag(), param)
		}
		return fmt.Sprintf("failed %q rule", fe.Tag())
	}
}

func lowerBoundMessage(kind reflect.Kind, param string, exclusive bool) string {
	switch kind {
	case reflect.String:
		return fmt.Sprintf("must be at least %s characters long", boundCount(param, exclusive, 1))
	case reflect.Slice, reflect.Array, reflect.Map:
		return fmt.Sprintf("must contain at least %s items", boundCount(param, exclusive, 1))
	default:
		if exclusive {
			return "must be > " + param
		}
		return "must be >= " + param
	}
}

func upperBoundMessage(kind reflect.Kind, param string, exclusive bool) string {
	switch kind {
	case reflect.String:
		return fmt.Sprintf("must be at most %s characters long", boundCount(param, exclusive, -1))
	case reflect.Slice, reflect.Array, reflect.Map:
		return fmt.Sprintf("must contain at most %s items", boundCount(param, exclusive, -1))
	default:
		if exclusive {
			return "must be < " + param
		}
		return "must be <= " + param
	}
}

// boundCount converts an exclusive length bound into the inclusive count.
func boundCount(param string, exclusive bool, step int) string {
	if !exclusive {
		return param
	}
	n, err := strconv.Atoi(param)
	if err != nil {
		return param
	}
	return strconv.Itoa(n + step)
}
