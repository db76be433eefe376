package ai

import "context"

// Provider is the transport contract used by the client. Implementations send
// a single request and must not retry on their own: retry policy belongs to
// the caller.
type Provider interface {
	// SendMessage sends a chat request and returns the completed response.
	// HTTP failures are returned as *APIError; context errors are returned
	// wrapped so errors.Is(err, context.Canceled) keeps working.
	SendMessage(ctx context.Context, request ChatRequest) (*ChatResponse, error)
}
