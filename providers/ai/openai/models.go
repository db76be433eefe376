package openai

import (
	"encoding/json"
	"strings"

	"github.com/leofalp/llmjson/providers/ai"
)

/*
	CHAT COMPLETIONS API - INPUT
*/

type chatCompletionRequest struct {
	Model          string              `json:"model"`
	Messages       []chatMessage       `json:"messages"`
	Temperature    *float64            `json:"temperature,omitempty"`
	MaxTokens      *int                `json:"max_tokens,omitempty"`
	ResponseFormat *chatResponseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponseFormat struct {
	Type       string          `json:"type"` // "json_object" or "json_schema"
	JSONSchema *chatJSONSchema `json:"json_schema,omitempty"`
}

type chatJSONSchema struct {
	Name   string          `json:"name"`
	Schema json.RawMessage `json:"schema"`
	Strict bool            `json:"strict,omitempty"`
}

/*
	CHAT COMPLETIONS API - OUTPUT
*/

type chatCompletionResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   *chatUsage   `json:"usage,omitempty"`
}

type chatChoice struct {
	Index        int                 `json:"index"`
	Message      chatResponseMessage `json:"message"`
	FinishReason string              `json:"finish_reason"` // "stop", "length", "content_filter"
}

type chatResponseMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content,omitempty"`
	Refusal   string `json:"refusal,omitempty"`
	Reasoning string `json:"reasoning,omitempty"` // OpenRouter and some local servers
}

type chatUsage struct {
	PromptTokens            int `json:"prompt_tokens"`
	CompletionTokens        int `json:"completion_tokens"`
	TotalTokens             int `json:"total_tokens"`
	CompletionTokensDetails *struct {
		ReasoningTokens int `json:"reasoning_tokens,omitempty"`
	} `json:"completion_tokens_details,omitempty"`
	PromptTokensDetails *struct {
		CachedTokens int `json:"cached_tokens,omitempty"`
	} `json:"prompt_tokens_details,omitempty"`
}

/*
	CONVERSION FUNCTIONS
*/

// requestToChatCompletion converts ai.ChatRequest to the wire format. The
// response_format field is only set when caps allow it.
func requestToChatCompletion(request ai.ChatRequest, caps Capabilities) chatCompletionRequest {
	req := chatCompletionRequest{
		Model:       request.Model,
		Temperature: request.Temperature,
	}

	if request.SystemPrompt != "" {
		req.Messages = append(req.Messages, chatMessage{Role: string(ai.RoleSystem), Content: request.SystemPrompt})
	}
	for _, msg := range request.Messages {
		req.Messages = append(req.Messages, chatMessage{Role: string(msg.Role), Content: msg.Content})
	}

	if request.MaxTokens > 0 {
		maxTokens := request.MaxTokens
		req.MaxTokens = &maxTokens
	}

	switch {
	case len(request.OutputSchema) > 0 && caps.SupportsStructuredOutputs:
		req.ResponseFormat = &chatResponseFormat{
			Type:       "json_schema",
			JSONSchema: &chatJSONSchema{Name: "response", Schema: request.OutputSchema},
		}
	case (request.JSONMode || len(request.OutputSchema) > 0) && caps.SupportsJSONMode:
		req.ResponseFormat = &chatResponseFormat{Type: "json_object"}
	}

	return req
}

// chatCompletionToGeneric converts the first choice of a chat completion into
// an ai.ChatResponse. Reasoning wrapped in <think> tags is moved out of the
// content so it cannot be mistaken for the answer.
func chatCompletionToGeneric(resp chatCompletionResponse) *ai.ChatResponse {
	chatResp := &ai.ChatResponse{
		ID:    resp.ID,
		Model: resp.Model,
	}

	if resp.Usage != nil {
		usage := &ai.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
		if resp.Usage.CompletionTokensDetails != nil {
			usage.ReasoningTokens = resp.Usage.CompletionTokensDetails.ReasoningTokens
		}
		if resp.Usage.PromptTokensDetails != nil {
			usage.CachedTokens = resp.Usage.PromptTokensDetails.CachedTokens
		}
		chatResp.Usage = usage
	}

	if len(resp.Choices) == 0 {
		chatResp.FinishReason = "error"
		return chatResp
	}

	choice := resp.Choices[0]
	content := strings.TrimSpace(choice.Message.Content)
	reasoning := strings.TrimSpace(choice.Message.Reasoning)

	if inContent := extractReasoningFromThinkTags(content); inContent != "" {
		if reasoning != "" {
			reasoning += "\n"
		}
		reasoning += inContent
		content = cleanThinkTags(content)
	}

	chatResp.Content = content
	chatResp.Reasoning = reasoning
	chatResp.Refusal = choice.Message.Refusal
	chatResp.FinishReason = choice.FinishReason
	return chatResp
}

const (
	thinkStartTag = "<think>"
	thinkEndTag   = "</think>"
)

// extractReasoningFromThinkTags returns the text inside <think>...</think>.
// A missing start tag means the reasoning starts at the beginning; the end tag
// is mandatory.
func extractReasoningFromThinkTags(content string) string {
	start := strings.Index(content, thinkStartTag)
	if start == -1 {
		start = 0
	} else {
		start += len(thinkStartTag)
	}

	end := strings.Index(content, thinkEndTag)
	if end == -1 || end <= start {
		return ""
	}

	return strings.TrimSpace(content[start:end])
}

// cleanThinkTags removes the <think>...</think> block and returns what remains.
func cleanThinkTags(content string) string {
	start := strings.Index(content, thinkStartTag)
	if start == -1 {
		start = 0
	}

	end := strings.Index(content, thinkEndTag)
	if end == -1 || end <= start {
		return content
	}

	return strings.TrimSpace(content[:start] + content[end+len(thinkEndTag):])
}
