package cost

import (
	"fmt"
	"strings"

	"github.com/leofalp/llmjson/providers/ai"
)

const tokensPerMillion = 1_000_000.0

// ModelCost represents the pricing structure for a language model.
// Costs are expressed in USD per million tokens.
//
//	modelCost := cost.ModelCost{
//	    InputCostPerMillion:       2.50,
//	    OutputCostPerMillion:      10.00,
//	    CachedInputCostPerMillion: 1.25,
//	}
type ModelCost struct {
	InputCostPerMillion  float64 `json:"input_cost_per_million"`
	OutputCostPerMillion float64 `json:"output_cost_per_million"`

	// CachedInputCostPerMillion applies to the cached share of the prompt.
	// Zero bills cached tokens at the input rate.
	CachedInputCostPerMillion float64 `json:"cached_input_cost_per_million,omitempty"`

	// ReasoningCostPerMillion applies to the reasoning share of the completion.
	// Zero bills reasoning tokens at the output rate.
	ReasoningCostPerMillion float64 `json:"reasoning_cost_per_million,omitempty"`
}

// Calculate returns the USD cost of usage. Cached tokens are counted as part
// of the prompt and reasoning tokens as part of the completion, as
// OpenAI-compatible endpoints report them.
func (mc ModelCost) Calculate(usage ai.Usage) float64 {
	prompt := float64(usage.PromptTokens)
	completion := float64(usage.CompletionTokens)

	total := 0.0

	if mc.CachedInputCostPerMillion > 0 && usage.CachedTokens > 0 {
		cached := float64(min(usage.CachedTokens, usage.PromptTokens))
		total += cached / tokensPerMillion * mc.CachedInputCostPerMillion
		prompt -= cached
	}

	if mc.ReasoningCostPerMillion > 0 && usage.ReasoningTokens > 0 {
		reasoning := float64(min(usage.ReasoningTokens, usage.CompletionTokens))
		total += reasoning / tokensPerMillion * mc.ReasoningCostPerMillion
		completion -= reasoning
	}

	total += prompt / tokensPerMillion * mc.InputCostPerMillion
	total += completion / tokensPerMillion * mc.OutputCostPerMillion
	return total
}

// String returns a formatted string representation of the model costs.
func (mc ModelCost) String() string {
	return fmt.Sprintf("Input: $%.6f/M, Output: $%.6f/M", mc.InputCostPerMillion, mc.OutputCostPerMillion)
}

// Table maps model names to their pricing. Keys may be full model names
// ("gpt-4o-mini") or prefixes ("gpt-4o"); see [Table.Lookup].
type Table map[string]ModelCost

// Lookup returns the pricing for model. An exact key wins; otherwise the
// longest key that is a prefix of model is used.
func (t Table) Lookup(model string) (ModelCost, bool) {
	if price, ok := t[model]; ok {
		return price, true
	}

	best := ""
	for key := range t {
		if strings.HasPrefix(model, key) && len(key) > len(best) {
			best = key
		}
	}
	if best == "" {
		return ModelCost{}, false
	}
	return t[best], true
}

// Cost returns the USD cost of usage for model, or zero when the model has no
// pricing entry.
func (t Table) Cost(model string, usage ai.Usage) float64 {
	price, ok := t.Lookup(model)
	if !ok {
		return 0
	}
	return price.Calculate(usage)
}
