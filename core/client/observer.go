package client

import (
	"context"

	"github.com/leofalp/llmjson/providers/observability"
)

// noopObserver is used when no observer is configured, so call sites never
// check for nil.
type noopObserver struct{}

type noopSpan struct{}

type noopInstrument struct{}

func (noopObserver) StartSpan(ctx context.Context, _ string, _ ...observability.Attribute) (context.Context, observability.Span) {
	return ctx, noopSpan{}
}

func (noopObserver) Counter(string) observability.Counter { return noopInstrument{} }
func (noopObserver) Histogram(string) observability.Histogram { return noopInstrument{} }

func (noopObserver) Debug(context.Context, string, ...observability.Attribute) {}
func (noopObserver) Info(context.Context, string, ...observability.Attribute) {}
func (noopObserver) Warn(context.Context, string, ...observability.Attribute) {}
func (noopObserver) Error(context.Context, string, ...observability.Attribute) {}

func (noopSpan) End() {}
func (noopSpan) SetAttributes(...observability.Attribute) {}
func (noopSpan) SetStatus(observability.StatusCode, string) {}
func (noopSpan) RecordError(error) {}
func (noopSpan) AddEvent(string, ...observability.Attribute) {}

func (noopInstrument) Add(context.Context, int64, ...observability.Attribute) {}
func (noopInstrument) Record(context.Context, float64, ...observability.Attribute) {}
