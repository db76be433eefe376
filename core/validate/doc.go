// Package validate checks extracted JSON text against a typed schema and
// reports every problem as a path plus a message.
//
// Any type with a SafeParse method satisfies [Schema]. Two implementations
// ship with the package: [StructSchema], driven by go-playground/validator
// struct tags, and [FuncSchema], which wraps a plain check function.
//
//	type Order struct {
//	    ID     string `json:"id" validate:"required"`
//	    Status string `json:"status" validate:"oneof=pending shipped"`
//	}
//
//	outcome := validate.Validate(`{"id": "1", "status": "lost"}`, validate.Struct[Order]())
//	// outcome.Valid == false
//	// outcome.Violations[0] == {Path: "status", Message: "must be one of: pending, shipped"}
package validate
