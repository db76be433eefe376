package client

import (
	"time"

	"github.com/leofalp/llmjson/core/parse"
	"github.com/leofalp/llmjson/providers/ai"
)

// Outcome is how one attempt ended.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
)

// AttemptRecord describes one request of a logical call. Records live only as
// long as the call and the [*ExhaustedError] that may carry them.
type AttemptRecord struct {
	Index        int
	Messages     []ai.Message
	ResponseText string
	Strategy     parse.Strategy
	Outcome      Outcome
	Class        ErrorClass
	Err          error
	Duration     time.Duration
}
