// Package openai implements [ai.Provider] for OpenAI-compatible
// /chat/completions endpoints: OpenAI itself, OpenRouter, Ollama and most
// self-hosted gateways.
//
// The provider sends exactly one HTTP request per SendMessage call and never
// retries. JSON mode and structured outputs are requested through
// response_format only when the detected [Capabilities] allow it.
package openai
