package client

import (
	"context"

	"github.com/leofalp/llmjson/internal/utils"
	"github.com/leofalp/llmjson/providers/ai"
	"github.com/leofalp/llmjson/providers/observability"
)

// observabilityMiddleware records one debug log, a duration histogram sample
// and the token count for every request that reaches the provider. It sits
// inside the timeout middleware so the duration covers the HTTP call only.
func observabilityMiddleware(observer observability.Provider) Middleware {
	return func(next SendFunc) SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			observer.Debug(ctx, "llm request",
				observability.String(observability.AttrLLMModel, request.Model),
				observability.Int(observability.AttrLLMRequestMessages, len(request.Messages)),
			)

			timer := utils.NewTimer()
			response, err := next(ctx, request)
			elapsed := timer.Stop()

			status := "ok"
			if err != nil {
				status = "error"
			}
			observer.Histogram(observability.MetricAttemptDuration).Record(ctx, float64(elapsed.Milliseconds()),
				observability.String(observability.AttrLLMModel, request.Model),
				observability.String(observability.AttrStatus, status),
			)

			if err != nil {
				observer.Debug(ctx, "llm request failed",
					observability.Error(err),
					observability.Duration(observability.AttrDuration, elapsed),
				)
				return nil, err
			}

			attrs := []observability.Attribute{
				observability.String(observability.AttrLLMModel, response.Model),
				observability.String(observability.AttrLLMResponseID, response.ID),
				observability.String(observability.AttrLLMFinishReason, response.FinishReason),
				observability.Duration(observability.AttrDuration, elapsed),
			}
			if response.Usage != nil {
				observer.Counter(observability.MetricTokensTotal).Add(ctx, int64(response.Usage.TotalTokens),
					observability.String(observability.AttrLLMModel, response.Model),
				)
				attrs = append(attrs,
					observability.Int(observability.AttrLLMTokensPrompt, response.Usage.PromptTokens),
					observability.Int(observability.AttrLLMTokensCompletion, response.Usage.CompletionTokens),
				)
			}
			observer.Debug(ctx, "llm response", attrs...)

			return response, nil
		}
	}
}
