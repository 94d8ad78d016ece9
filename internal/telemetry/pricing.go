package telemetry

import "github.com/rs/zerolog/log"

// ModelPricing holds per-million-token costs in USD.
type ModelPricing struct {
	PromptPerMillion     float64
	CompletionPerMillion float64
}

// pricing maps model identifiers to their token pricing. Lookup is by
// exact model name.
var pricing = map[string]ModelPricing{
	"gpt-4o":            {2.50, 10.00},
	"gpt-4o-mini":       {0.15, 0.60},
	"gpt-4-turbo":       {10.00, 30.00},
	"gpt-3.5-turbo":     {0.50, 1.50},
	"claude-sonnet-4-5": {3.00, 15.00},
	"claude-sonnet-4":   {3.00, 15.00},
	"claude-opus-4":     {15.00, 75.00},
	"claude-haiku-4-5":  {0.80, 4.00},
}

// GetPricing returns the pricing for model. The second return value
// reports whether the model was found.
func GetPricing(model string) (ModelPricing, bool) {
	p, ok := pricing[model]
	return p, ok
}

// Cost computes prompt and completion costs for a request. Unknown models
// price at zero so accounting never blocks a request, but the miss is
// logged so missing price entries do not hide silently.
func Cost(model string, promptTokens, completionTokens int64) (promptCost, completionCost float64) {
	p, ok := pricing[model]
	if !ok {
		log.Warn().Str("model", model).Msg("no pricing entry for model, recording zero cost")
		return 0, 0
	}
	promptCost = float64(promptTokens) / 1_000_000 * p.PromptPerMillion
	completionCost = float64(completionTokens) / 1_000_000 * p.CompletionPerMillion
	return promptCost, completionCost
}
