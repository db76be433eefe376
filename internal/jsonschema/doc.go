// Package jsonschema derives JSON Schema documents from Go types by
// reflection. The schemas are shown to models, both in request
// response_format fields and in retry instructions, so they describe the
// expected shape rather than drive validation.
//
// Field names follow `json` tags. Constraints are read from
// go-playground/validator `validate` tags (required, oneof, min, max, gt, gte,
// lt, lte, len, email, url, uuid) and from `jsonschema` tags
// (description=..., enum=..., required). Recursive types are emitted through
// $ref and $defs.
//
// The main entry point is [For].
package jsonschema
