package openai

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/leofalp/llmjson/internal/utils"
	"github.com/leofalp/llmjson/providers/ai"
)

const (
	// DefaultBaseURL is the OpenAI API root.
	DefaultBaseURL = "https://api.openai.com/v1"

	chatCompletionsEndpoint = "/chat/completions"
)

// ErrMissingAPIKey is returned by SendMessage when no API key is configured.
var ErrMissingAPIKey = errors.New("openai: API key is not set")

// Provider sends chat completions to an OpenAI-compatible endpoint.
type Provider struct {
	apiKey       string
	baseURL      string
	client       *http.Client
	capabilities Capabilities
	// allowAnonymous skips the API key check, for local gateways.
	allowAnonymous bool
}

var _ ai.Provider = (*Provider)(nil)

// New creates a provider for baseURL. An empty baseURL means
// [DefaultBaseURL]. Capabilities are detected from the URL and can be
// replaced with [Provider.WithCapabilities].
func New(apiKey, baseURL string) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	return &Provider{
		apiKey:       apiKey,
		baseURL:      baseURL,
		client:       &http.Client{},
		capabilities: detectCapabilities(baseURL),
	}
}

// WithHTTPClient sets the HTTP client used for requests. Timeouts should be
// left to the caller's context.
func (p *Provider) WithHTTPClient(client *http.Client) *Provider {
	if client != nil {
		p.client = client
	}
	return p
}

// WithCapabilities overrides the detected capabilities.
func (p *Provider) WithCapabilities(caps Capabilities) *Provider {
	p.capabilities = caps
	return p
}

// WithoutAPIKey allows requests without an Authorization header.
func (p *Provider) WithoutAPIKey() *Provider {
	p.allowAnonymous = true
	return p
}

// Capabilities returns the capabilities in use.
func (p *Provider) Capabilities() Capabilities {
	return p.capabilities
}

// SendMessage implements ai.Provider.
func (p *Provider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	if p.apiKey == "" && !p.allowAnonymous {
		return nil, ErrMissingAPIKey
	}

	_, resp, err := utils.DoPostSync[chatCompletionResponse](ctx, p.client, p.baseURL+chatCompletionsEndpoint, p.apiKey, requestToChatCompletion(request, p.capabilities))
	if err != nil {
		return nil, err
	}

	return chatCompletionToGeneric(*resp), nil
}
