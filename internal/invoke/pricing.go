package invoke

// ModelPricing holds the price per million tokens for one model.
type ModelPricing struct {
	// InputPerMTok is the USD price per 1M input tokens.
	InputPerMTok float64
	// OutputPerMTok is the USD price per 1M output tokens.
	OutputPerMTok float64
}

// Cost estimates the USD cost for the given token counts.
func (p ModelPricing) Cost(inputTokens, outputTokens int64) float64 {
	inputCost := float64(inputTokens) / 1_000_000 * p.InputPerMTok
	outputCost := float64(outputTokens) / 1_000_000 * p.OutputPerMTok
	return inputCost + outputCost
}

// defaultPricing covers the models shipped in the default configuration.
// Approximate list pricing; override via configuration as prices change.
var defaultPricing = map[string]ModelPricing{
	"claude-3-5-haiku-20241022":  {InputPerMTok: 0.80, OutputPerMTok: 4.0},
	"claude-haiku-4-5-20251001":  {InputPerMTok: 1.0, OutputPerMTok: 5.0},
	"claude-sonnet-4-20250514":   {InputPerMTok: 3.0, OutputPerMTok: 15.0},
	"claude-sonnet-4-5-20250929": {InputPerMTok: 3.0, OutputPerMTok: 15.0},
	"claude-opus-4-5-20251101":   {InputPerMTok: 5.0, OutputPerMTok: 25.0},
}

// DefaultPricing returns a copy of the built-in pricing table.
func DefaultPricing() map[string]ModelPricing {
	table := make(map[string]ModelPricing, len(defaultPricing))
	for model, p := range defaultPricing {
		table[model] = p
	}
	return table
}
