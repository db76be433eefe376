// Package ai defines the provider-agnostic request and response types used
// between the retry controller and the transport that talks to a model.
//
// A [Provider] performs exactly one round-trip per call. Requests flow through
// [ChatRequest] and responses come back as [ChatResponse]; non-2xx replies and
// transport failures are reported as [*APIError] so callers can classify them
// by status code.
package ai
