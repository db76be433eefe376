package validate

// FuncSchema adapts a check function into a [Schema]. The value is first
// decoded into T; check runs only when decoding succeeds.
type FuncSchema[T any] struct {
	check      func(T) []FieldViolation
	schemaJSON string
}

// Func returns a schema that decodes into T and then calls check. A nil check
// accepts every value that decodes.
func Func[T any](check func(T) []FieldViolation) *FuncSchema[T] {
	return &FuncSchema[T]{check: check}
}

// WithJSONSchema attaches a JSON Schema document shown to the model on retries.
func (s *FuncSchema[T]) WithJSONSchema(schema string) *FuncSchema[T] {
	s.schemaJSON = schema
	return s
}

// JSONSchema returns the document set with WithJSONSchema.
func (s *FuncSchema[T]) JSONSchema() string {
	return s.schemaJSON
}

func (s *FuncSchema[T]) SafeParse(value any) Result[T] {
	data, violations := decodeInto[T](value)
	if len(violations) > 0 {
		return Result[T]{Violations: violations}
	}

	if s.check != nil {
		if violations := s.check(data); len(violations) > 0 {
			return Result[T]{Violations: violations}
		}
	}
	return Result[T]{Success: true, Data: data}
}
