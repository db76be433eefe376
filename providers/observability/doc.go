// Package observability defines the tracing, metrics and logging interfaces
// the client reports through, plus the attribute keys and span names it uses.
//
// The central entry point is [Provider], which composes [Tracer], [Metrics]
// and [Logger] into a single injectable dependency. A client without a
// provider records nothing. The active [Span] travels in a
// [context.Context]; transport helpers pick it up with [SpanFromContext].
//
// semconv.go lists every attribute key, span, event and metric name.
package observability
