package jsonschema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Schema is the subset of JSON Schema emitted by this package.
type Schema struct {
	Type        string             `json:"type,omitempty"`
	Format      string             `json:"format,omitempty"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	// AdditionalProperties holds the value schema of map types.
	AdditionalProperties *Schema `json:"additionalProperties,omitempty"`
	Enum                 []any   `json:"enum,omitempty"`

	Minimum          *float64 `json:"minimum,omitempty"`
	Maximum          *float64 `json:"maximum,omitempty"`
	ExclusiveMinimum *float64 `json:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum *float64 `json:"exclusiveMaximum,omitempty"`
	MinLength        *int     `json:"minLength,omitempty"`
	MaxLength        *int     `json:"maxLength,omitempty"`
	MinItems         *int     `json:"minItems,omitempty"`
	MaxItems         *int     `json:"maxItems,omitempty"`

	Ref  string             `json:"$ref,omitempty"`
	Defs map[string]*Schema `json:"$defs,omitempty"`
}

// For returns the schema of T. Tag values that cannot be parsed for the field
// type are reported as an error; the schema is still returned without them.
func For[T any]() (*Schema, error) {
	return Generate(reflect.TypeFor[T]())
}

// Generate returns the schema of t. See [For].
func Generate(t reflect.Type) (*Schema, error) {
	g := &generator{
		inProgress: make(map[reflect.Type]bool),
		recursive:  make(map[reflect.Type]bool),
		defs:       make(map[string]*Schema),
	}

	schema := g.schemaFor(t)
	if len(g.defs) > 0 {
		schema.Defs = g.defs
	}

	if len(g.errs) > 0 {
		return schema, fmt.Errorf("jsonschema: %s", strings.Join(g.errs, "; "))
	}
	return schema, nil
}

// JSON returns the compact JSON encoding of the schema.
func (s *Schema) JSON() (string, error) {
	encoded, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal schema to JSON: %w", err)
	}
	return string(encoded), nil
}

// String returns the JSON encoding, or an error text if marshalling fails.
func (s *Schema) String() string {
	encoded, err := s.JSON()
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return encoded
}

var timeType = reflect.TypeFor[time.Time]()

type generator struct {
	// inProgress holds the struct types currently being expanded.
	inProgress map[reflect.Type]bool
	// recursive holds the struct types found to reference themselves.
	recursive map[reflect.Type]bool
	defs      map[string]*Schema
	errs      []string
}

func (g *generator) schemaFor(t reflect.Type) *Schema {
	switch t.Kind() {
	case reflect.Pointer:
		return g.schemaFor(t.Elem())
	case reflect.String:
		return &Schema{Type: "string"}
	case reflect.Bool:
		return &Schema{Type: "boolean"}
	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: "integer"}
	case reflect.Slice, reflect.Array:
		return &Schema{Type: "array", Items: g.schemaFor(t.Elem())}
	case reflect.Map:
		return &Schema{Type: "object", AdditionalProperties: g.schemaFor(t.Elem())}
	case reflect.Struct:
		if t == timeType {
			return &Schema{Type: "string", Format: "date-time"}
		}
		return g.structSchema(t)
	default:
		// interface{} and anything else accept any value.
		return &Schema{}
	}
}

func (g *generator) structSchema(t reflect.Type) *Schema {
	name := defName(t)
	if g.inProgress[t] {
		g.recursive[t] = true
		return &Schema{Ref: "#/$defs/" + name}
	}

	g.inProgress[t] = true
	schema := &Schema{Type: "object", Properties: make(map[string]*Schema)}
	g.addFields(schema, t)
	delete(g.inProgress, t)

	if g.recursive[t] {
		g.defs[name] = schema
		return &Schema{Ref: "#/$defs/" + name}
	}
	return schema
}

func (g *generator) addFields(schema *Schema, t reflect.Type) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name, omitEmpty, skip := jsonName(field)
		if skip {
			continue
		}

		// Embedded structs are promoted like encoding/json does, exported or not.
		if field.Anonymous && name == "" && indirect(field.Type).Kind() == reflect.Struct {
			g.addFields(schema, indirect(field.Type))
			continue
		}
		if !field.IsExported() {
			continue
		}
		if name == "" {
			name = field.Name
		}

		fieldSchema := g.schemaFor(field.Type)
		required := field.Type.Kind() != reflect.Pointer && !omitEmpty

		if fieldSchema.Ref == "" {
			if err := applyValidateTag(indirect(field.Type), field.Tag.Get("validate"), fieldSchema, &required); err != nil {
				g.errs = append(g.errs, fmt.Sprintf("%s.%s: %v", t.Name(), field.Name, err))
			}
			if err := applySchemaTag(indirect(field.Type), field.Tag.Get("jsonschema"), fieldSchema, &required); err != nil {
				g.errs = append(g.errs, fmt.Sprintf("%s.%s: %v", t.Name(), field.Name, err))
			}
		}

		schema.Properties[name] = fieldSchema
		if required {
			schema.Required = append(schema.Required, name)
		}
	}
}

// jsonName returns the JSON property name of field. An empty name means the
// tag does not rename the field.
func jsonName(field reflect.StructField) (name string, omitEmpty, skip bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	name, options, _ := strings.Cut(tag, ",")
	return name, strings.Contains(options, "omitempty"), false
}

func indirect(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func defName(t reflect.Type) string {
	if t.Name() != "" {
		return t.Name()
	}
	return "Anonymous"
}

// applyValidateTag maps validator rules onto schema keywords. Rules after
// "dive" apply to elements and are ignored.
func applyValidateTag(t reflect.Type, tag string, schema *Schema, required *bool) error {
	if tag == "" {
		return nil
	}

	for _, rule := range strings.Split(tag, ",") {
		key, value, _ := strings.Cut(strings.TrimSpace(rule), "=")

		switch key {
		case "dive":
			return nil
		case "required":
			*required = true
		case "omitempty":
			*required = false
		case "oneof":
			for _, option := range strings.Fields(value) {
				enumValue, err := parseEnumValue(t, option)
				if err != nil {
					return err
				}
				schema.Enum = append(schema.Enum, enumValue)
			}
		case "min", "gte", "max", "lte", "gt", "lt", "len":
			if err := applyBound(t, key, value, schema); err != nil {
				return err
			}
		case "email":
			schema.Format = "email"
		case "url", "uri":
			schema.Format = "uri"
		case "uuid", "uuid4":
			schema.Format = "uuid"
		}
	}
	return nil
}

func applyBound(t reflect.Type, rule, value string, schema *Schema) error {
	switch t.Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("parse %s=%s: %w", rule, value, err)
		}
		lower, upper := &schema.MinLength, &schema.MaxLength
		if t.Kind() != reflect.String {
			lower, upper = &schema.MinItems, &schema.MaxItems
		}
		switch rule {
		case "min", "gte":
			*lower = &n
		case "max", "lte":
			*upper = &n
		case "gt":
			*lower = ptr(n + 1)
		case "lt":
			*upper = ptr(n - 1)
		case "len":
			*lower, *upper = &n, ptr(n)
		}
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("parse %s=%s: %w", rule, value, err)
		}
		switch rule {
		case "min", "gte":
			schema.Minimum = &f
		case "max", "lte":
			schema.Maximum = &f
		case "gt":
			schema.ExclusiveMinimum = &f
		case "lt":
			schema.ExclusiveMaximum = &f
		case "len":
			schema.Minimum, schema.Maximum = &f, ptr(f)
		}
		return nil

	default:
		return nil
	}
}

// applySchemaTag reads `jsonschema:"description=...,enum=a,enum=b,required"`.
func applySchemaTag(t reflect.Type, tag string, schema *Schema, required *bool) error {
	if tag == "" {
		return nil
	}

	for _, item := range strings.Split(tag, ",") {
		key, value, hasValue := strings.Cut(strings.TrimSpace(item), "=")
		switch {
		case key == "required" && !hasValue:
			*required = true
		case key == "description":
			schema.Description = value
		case key == "enum":
			enumValue, err := parseEnumValue(t, value)
			if err != nil {
				return err
			}
			schema.Enum = append(schema.Enum, enumValue)
		}
	}
	return nil
}

func parseEnumValue(t reflect.Type, value string) (any, error) {
	switch t.Kind() {
	case reflect.String:
		return value, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse enum value %q as integer: %w", value, err)
		}
		return v, nil
	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("parse enum value %q as number: %w", value, err)
		}
		return v, nil
	case reflect.Bool:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("parse enum value %q as boolean: %w", value, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("enum unsupported for type %v", t)
	}
}

func ptr[T any](v T) *T {
	return &v
}
