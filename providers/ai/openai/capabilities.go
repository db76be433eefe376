package openai

import "strings"

// Capabilities lists the response_format features an endpoint accepts.
// Sending an unsupported response_format makes some gateways fail with 400,
// which the client would treat as fatal.
type Capabilities struct {
	// SupportsJSONMode allows response_format {"type": "json_object"}.
	SupportsJSONMode bool
	// SupportsStructuredOutputs allows response_format {"type": "json_schema"}.
	SupportsStructuredOutputs bool
}

// detectCapabilities guesses capabilities from the base URL of well-known hosts.
func detectCapabilities(baseURL string) Capabilities {
	baseURL = strings.ToLower(baseURL)

	switch {
	case strings.Contains(baseURL, "api.openai.com"),
		strings.Contains(baseURL, "openai.azure.com"),
		strings.Contains(baseURL, "openrouter.ai"):
		return Capabilities{SupportsJSONMode: true, SupportsStructuredOutputs: true}
	case strings.Contains(baseURL, "localhost:11434"),
		strings.Contains(baseURL, "ollama"):
		return Capabilities{SupportsJSONMode: true}
	default:
		return Capabilities{}
	}
}
