package observability

// Attribute keys, span names, event names and metric names used by the
// client and the transport helpers.

// --- LLM Provider Attributes ---

const (
	// AttrLLMProvider is the name of the LLM provider (e.g., "openai")
	AttrLLMProvider = "llm.provider"

	// AttrLLMModel is the model identifier
	AttrLLMModel = "llm.model"

	// AttrLLMResponseID is the unique response identifier from the provider
	AttrLLMResponseID = "llm.response.id"

	// AttrLLMFinishReason is the reason the generation finished
	AttrLLMFinishReason = "llm.finish_reason"

	// AttrLLMTemperature is the sampling temperature used
	AttrLLMTemperature = "llm.temperature"

	// AttrLLMRequestMessages is the number of messages sent
	AttrLLMRequestMessages = "llm.request.messages"
)

// --- Token Usage Attributes ---

const (
	AttrLLMTokensPrompt     = "llm.tokens.prompt"     // #nosec G101 -- token refers to LLM tokens
	AttrLLMTokensCompletion = "llm.tokens.completion" // #nosec G101 -- token refers to LLM tokens
	AttrLLMTokensTotal      = "llm.tokens.total"      // #nosec G101 -- token refers to LLM tokens
	AttrLLMCost             = "llm.cost"
)

// --- Structured Call Attributes ---

const (
	// AttrCallID identifies one logical structured call across its attempts.
	AttrCallID = "llmjson.call_id"

	// AttrAttempt is the zero-based attempt index.
	AttrAttempt = "llmjson.attempt"

	// AttrMaxAttempts is the attempt budget of the call.
	AttrMaxAttempts = "llmjson.max_attempts"

	// AttrAttempts is the number of attempts a finished call used.
	AttrAttempts = "llmjson.attempts"

	// AttrStrategy is the extraction strategy that produced the candidate.
	AttrStrategy = "llmjson.strategy"

	// AttrErrorClass is the retry classification of a failed attempt.
	AttrErrorClass = "llmjson.error_class"

	// AttrViolations is the number of schema violations in a failed attempt.
	AttrViolations = "llmjson.violations"

	// AttrBackoff is the wait before the next attempt.
	AttrBackoff = "llmjson.backoff"

	// AttrResponsePreview is a truncated excerpt of the raw model output.
	AttrResponsePreview = "llmjson.response_preview"
)

// --- HTTP Attributes ---

const (
	AttrHTTPMethod           = "http.method"
	AttrHTTPStatusCode       = "http.status_code"
	AttrHTTPURL              = "http.url"
	AttrHTTPRequestBodySize  = "http.request.body.size"
	AttrHTTPResponseBodySize = "http.response.body.size"
	AttrHTTPDuration         = "http.request.duration"
)

// --- General Attributes ---

const (
	AttrError             = "error"
	AttrDuration          = "duration"
	AttrStatus            = "status"
	AttrStatusDescription = "status_description"
)

// --- Span Names ---

const (
	// SpanChat covers a single unstructured chat call.
	SpanChat = "llmjson.chat"

	// SpanChatJSON covers one logical structured call with all its attempts.
	SpanChatJSON = "llmjson.chat_json"
)

// --- Event Names ---

const (
	EventAttemptStart   = "llmjson.attempt.start"
	EventAttemptSuccess = "llmjson.attempt.success"
	EventAttemptFailed  = "llmjson.attempt.failed"
	EventBackoff        = "llmjson.backoff"

	EventHTTPRequestPrepared = "http.request.prepared"
	EventHTTPRequestError    = "http.request.error"
	EventHTTPResponse        = "http.response.received"
)

// --- Metric Names ---

const (
	// MetricAttempts counts attempts, labelled with their outcome class.
	MetricAttempts = "llmjson.attempts"

	// MetricAttemptDuration records attempt latency in milliseconds.
	MetricAttemptDuration = "llmjson.attempt.duration_ms"

	// MetricTokensTotal counts billed tokens, failed attempts included.
	MetricTokensTotal = "llmjson.tokens.total"
)
