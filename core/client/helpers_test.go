package client

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/leofalp/llmjson/core/cost"
	"github.com/leofalp/llmjson/providers/ai"
)

// step is one scripted provider reply.
type step func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error)

func reply(content string) step {
	return func(context.Context, ai.ChatRequest) (*ai.ChatResponse, error) {
		return &ai.ChatResponse{
			Model:        "test-model",
			Content:      content,
			FinishReason: "stop",
			Usage:        &ai.Usage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150},
		}, nil
	}
}

func failWith(status int) step {
	return func(context.Context, ai.ChatRequest) (*ai.ChatResponse, error) {
		return nil, &ai.APIError{StatusCode: status, Message: fmt.Sprintf("status %d", status)}
	}
}

// blockUntilDone waits for the request context like a hung HTTP call would.
func blockUntilDone(onStart func()) step {
	return func(ctx context.Context, _ ai.ChatRequest) (*ai.ChatResponse, error) {
		if onStart != nil {
			onStart()
		}
		<-ctx.Done()
		return nil, &ai.APIError{Err: ctx.Err()}
	}
}

// scriptedProvider replays steps in order and records every request.
type scriptedProvider struct {
	mu       sync.Mutex
	steps    []step
	requests []ai.ChatRequest
}

func (p *scriptedProvider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	p.mu.Lock()
	index := len(p.requests)
	p.requests = append(p.requests, request.Clone())
	p.mu.Unlock()

	if index >= len(p.steps) {
		return nil, fmt.Errorf("unexpected request %d", index+1)
	}
	return p.steps[index](ctx, request)
}

func (p *scriptedProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

// recordingSleeper records requested waits and returns immediately.
type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
	hook   func()
}

func (s *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.delays = append(s.delays, d)
	hook := s.hook
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
	return ctx.Err()
}

var testPricing = cost.Table{
	"test-model": {InputCostPerMillion: 1, OutputCostPerMillion: 2},
}

func newTestClient(t *testing.T, provider ai.Provider, sleeper *recordingSleeper, opts ...Option) *Client {
	t.Helper()

	opts = append([]Option{
		WithProvider(provider),
		WithSleeper(sleeper.sleep),
		WithRand(func() float64 { return 0 }),
	}, opts...)

	c, err := New(Config{Model: "test-model", Pricing: testPricing}, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func userRequest(content string) ai.ChatRequest {
	return ai.ChatRequest{Messages: []ai.Message{{Role: ai.RoleUser, Content: content}}}
}
