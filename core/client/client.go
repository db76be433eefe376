package client

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/leofalp/llmjson/core/cost"
	"github.com/leofalp/llmjson/providers/ai"
	"github.com/leofalp/llmjson/providers/ai/openai"
	"github.com/leofalp/llmjson/providers/observability"
)

// DefaultTimeout bounds one attempt when neither the request nor the Config
// sets a timeout.
const DefaultTimeout = 60 * time.Second

// ErrInvalidConfig is wrapped by [New] for rejected configurations.
var ErrInvalidConfig = errors.New("llmjson: invalid config")

// Config is everything the client needs to reach a completion endpoint. The
// client never reads the environment; see internal/config for binaries.
type Config struct {
	// APIKey is sent as a bearer token. It may be empty when BaseURL points at
	// a keyless endpoint such as a local Ollama; with neither set, every
	// request fails with openai.ErrMissingAPIKey, which is not retried.
	APIKey  string
	BaseURL string // OpenAI-compatible root, e.g. "https://api.openai.com/v1"

	// DefaultTimeout bounds each attempt unless the request sets its own.
	DefaultTimeout time.Duration

	// Model is used for requests that leave ChatRequest.Model empty.
	Model string

	Budget Budget

	// Pricing converts usage to cost. Models without an entry cost zero.
	Pricing cost.Table
}

// Client sends chat requests through a provider. It holds no per-call state
// and may be shared by concurrent callers.
type Client struct {
	config      Config
	provider    ai.Provider
	httpClient  *http.Client
	observer    observability.Provider
	sleep       Sleeper
	random      func() float64
	middlewares []Middleware
	send        SendFunc
}

// Option configures a [Client].
type Option func(*Client)

// WithProvider replaces the default OpenAI-compatible provider.
func WithProvider(provider ai.Provider) Option {
	return func(c *Client) {
		c.provider = provider
	}
}

// WithHTTPClient sets the HTTP client of the default provider. It has no
// effect together with [WithProvider].
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithObserver enables spans, metrics and logs for every call.
func WithObserver(observer observability.Provider) Option {
	return func(c *Client) {
		c.observer = observer
	}
}

// WithSleeper replaces the function used for backoff waits.
func WithSleeper(sleeper Sleeper) Option {
	return func(c *Client) {
		c.sleep = sleeper
	}
}

// WithRand replaces the jitter source. fn must return values in [0, 1) and be
// safe for concurrent use when the client is shared.
func WithRand(fn func() float64) Option {
	return func(c *Client) {
		c.random = fn
	}
}

// WithMiddleware adds middlewares around every provider call, outermost first.
// They run inside the per-attempt timeout.
func WithMiddleware(middlewares ...Middleware) Option {
	return func(c *Client) {
		c.middlewares = append(c.middlewares, middlewares...)
	}
}

// New creates a client from cfg. Zero Budget fields and a zero timeout take
// the package defaults.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.Budget.MaxAttempts < 0 {
		return nil, fmt.Errorf("%w: max attempts must be at least 1, got %d", ErrInvalidConfig, cfg.Budget.MaxAttempts)
	}
	if cfg.DefaultTimeout < 0 {
		return nil, fmt.Errorf("%w: negative timeout %s", ErrInvalidConfig, cfg.DefaultTimeout)
	}
	if cfg.DefaultTimeout == 0 {
		cfg.DefaultTimeout = DefaultTimeout
	}
	cfg.Budget = cfg.Budget.withDefaults()

	c := &Client{
		config: cfg,
		sleep:  sleepContext,
		random: rand.Float64,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.provider == nil {
		provider := openai.New(cfg.APIKey, cfg.BaseURL)
		if cfg.APIKey == "" && cfg.BaseURL != "" {
			provider.WithoutAPIKey()
		}
		if c.httpClient != nil {
			provider.WithHTTPClient(c.httpClient)
		}
		c.provider = provider
	}

	chain := make([]Middleware, 0, len(c.middlewares)+2)
	chain = append(chain, timeoutMiddleware(cfg.DefaultTimeout))
	if c.observer != nil {
		chain = append(chain, observabilityMiddleware(c.observer))
	} else {
		c.observer = noopObserver{}
	}
	chain = append(chain, c.middlewares...)
	c.send = buildSendChain(c.provider, chain)

	return c, nil
}

// Config returns the effective configuration, defaults applied.
func (c *Client) Config() Config {
	return c.config
}

// ChatResult is the outcome of a single raw completion.
type ChatResult struct {
	Content  string
	Usage    ai.Usage
	Cost     float64
	Response *ai.ChatResponse
}

// Chat performs exactly one attempt and returns the raw content. Nothing is
// extracted or retried.
func (c *Client) Chat(ctx context.Context, request ai.ChatRequest) (*ChatResult, error) {
	request = c.prepare(request)

	ctx, span := c.observer.StartSpan(ctx, observability.SpanChat,
		observability.String(observability.AttrCallID, uuid.NewString()),
		observability.String(observability.AttrLLMModel, request.Model),
	)
	defer span.End()

	response, err := c.send(ctx, request)
	if err != nil {
		if ctx.Err() != nil && !errors.Is(err, ErrCancelled) {
			err = cancelled(ctx)
		}
		span.RecordError(err)
		span.SetStatus(observability.StatusError, Classify(err).String())
		return nil, err
	}

	result := &ChatResult{
		Content:  response.Content,
		Response: response,
	}
	result.Usage.Add(response.Usage)
	result.Cost = c.costOf(request.Model, response)

	span.SetAttributes(
		observability.Int(observability.AttrLLMTokensTotal, result.Usage.TotalTokens),
		observability.Float64(observability.AttrLLMCost, result.Cost),
	)
	span.SetStatus(observability.StatusOK, "")
	return result, nil
}

// prepare fills request defaults from the config. The caller's request is
// never modified.
func (c *Client) prepare(request ai.ChatRequest) ai.ChatRequest {
	request = request.Clone()
	if request.Model == "" {
		request.Model = c.config.Model
	}
	if request.Timeout <= 0 {
		request.Timeout = c.config.DefaultTimeout
	}
	return request
}

// costOf prices one response. The model reported by the endpoint wins since
// it is usually the more specific name.
func (c *Client) costOf(requestModel string, response *ai.ChatResponse) float64 {
	if response == nil || response.Usage == nil || len(c.config.Pricing) == 0 {
		return 0
	}
	model := response.Model
	if _, ok := c.config.Pricing.Lookup(model); model == "" || !ok {
		model = requestModel
	}
	return c.config.Pricing.Cost(model, *response.Usage)
}

// jitter draws a uniform value in [0, JitterWindow).
func (c *Client) jitter() time.Duration {
	return time.Duration(c.random() * float64(JitterWindow))
}
