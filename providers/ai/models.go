package ai

import (
	"encoding/json"
	"time"
)

/*
	##### PROVIDER INPUT #####
*/

// ChatRequest represents a single chat completion request.
type ChatRequest struct {
	Model        string    `json:"model,omitempty"`         // Model name or identifier; empty means the client default
	Messages     []Message `json:"messages"`                // Conversation, oldest first
	SystemPrompt string    `json:"system_prompt,omitempty"` // Optional system prompt, sent before Messages

	Temperature *float64 `json:"temperature,omitempty"` // Sampling temperature; nil leaves the provider default
	MaxTokens   int      `json:"max_tokens,omitempty"`  // Optional completion token cap

	// Timeout bounds a single attempt. Zero means the client default.
	Timeout time.Duration `json:"-"`

	// JSONMode asks the provider for a JSON object response when supported.
	JSONMode bool `json:"json_mode,omitempty"`
	// OutputSchema is an optional JSON Schema for providers that accept one.
	OutputSchema json.RawMessage `json:"output_schema,omitempty"`
}

// Clone returns a copy of the request whose Messages slice can be appended to
// without touching the original.
func (r ChatRequest) Clone() ChatRequest {
	out := r
	out.Messages = append([]Message(nil), r.Messages...)
	if r.Temperature != nil {
		temperature := *r.Temperature
		out.Temperature = &temperature
	}
	return out
}

// Message represents a single message in a conversation.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// MessageRole represents the role of a message; compatible with string
type MessageRole string

const (
	RoleSystem    MessageRole = "system"    // System instructions/configuration
	RoleUser      MessageRole = "user"      // End-user message
	RoleAssistant MessageRole = "assistant" // Model response
)

/*
	##### PROVIDER OUTPUT #####
*/

// Usage counts the tokens billed for one or more requests.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`

	ReasoningTokens int `json:"reasoning_tokens,omitempty"` // Tokens used for reasoning, when reported
	CachedTokens    int `json:"cached_tokens,omitempty"`    // Cached prompt tokens, when reported
}

// Add accumulates other into u. A nil other is ignored.
func (u *Usage) Add(other *Usage) {
	if other == nil {
		return
	}
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
	u.ReasoningTokens += other.ReasoningTokens
	u.CachedTokens += other.CachedTokens
}

// ChatResponse represents the response from a chat completion
type ChatResponse struct {
	ID           string `json:"id"`
	Model        string `json:"model"`
	Content      string `json:"content"`
	FinishReason string `json:"finish_reason,omitempty"`
	Usage        *Usage `json:"usage,omitempty"`

	Refusal   string `json:"refusal,omitempty"`   // If model refuses to respond (safety/policy)
	Reasoning string `json:"reasoning,omitempty"` // Chain-of-thought reasoning split off the content
}
