package client

import (
	"context"

	"github.com/leofalp/llmjson/providers/ai"
)

// SendFunc sends one chat request and returns the completed response. It is
// the unit threaded through the middleware chain.
type SendFunc func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error)

// Middleware wraps a SendFunc. Every attempt of a logical call passes through
// the chain once; the first middleware in a slice is the outermost wrapper.
type Middleware func(next SendFunc) SendFunc

// buildSendChain wraps provider.SendMessage with middlewares, applied in
// reverse so that middlewares[0] runs first.
func buildSendChain(provider ai.Provider, middlewares []Middleware) SendFunc {
	var chain SendFunc = func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
		return provider.SendMessage(ctx, request)
	}

	for i := len(middlewares) - 1; i >= 0; i-- {
		if middlewares[i] != nil {
			chain = middlewares[i](chain)
		}
	}

	return chain
}
