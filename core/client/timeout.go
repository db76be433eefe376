package client

import (
	"context"
	"errors"
	"time"

	"github.com/leofalp/llmjson/providers/ai"
)

// timeoutMiddleware bounds each attempt with its own deadline:
// request.Timeout, or defaultTimeout when that is zero. A shorter deadline on
// the caller's context still wins.
//
// Errors are normalized here: the caller's context ending becomes an
// [ErrCancelled] error and the attempt deadline becomes a [*TimeoutError].
func timeoutMiddleware(defaultTimeout time.Duration) Middleware {
	return func(next SendFunc) SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			timeout := request.Timeout
			if timeout <= 0 {
				timeout = defaultTimeout
			}

			attemptCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			response, err := next(attemptCtx, request)
			if err == nil {
				return response, nil
			}

			if ctx.Err() != nil {
				return nil, cancelled(ctx)
			}
			if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
				return nil, &TimeoutError{Timeout: timeout}
			}
			return nil, err
		}
	}
}
