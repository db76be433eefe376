// Package slogobs provides an observability.Provider backed by log/slog.
// Spans, span events and metric updates become debug records; log calls map
// to their slog levels. The entry point is [New]; output is tuned with
// [WithFormat], [WithLevel], [WithOutput] and [WithLogger].
package slogobs
