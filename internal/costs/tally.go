package costs

import (
	"sync"

	"github.com/paulcedrick/agentos/internal/invoke"
)

// Tally is an in-memory CostSink for single runs that need a summary
// without touching disk.
type Tally struct {
	mu           sync.Mutex
	invocations  int
	inputTokens  int64
	outputTokens int64
	cost         float64
}

// Record adds one invocation's spend to the running totals.
func (t *Tally) Record(stage, model string, inputTokens, outputTokens int64, pricing invoke.ModelPricing) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.invocations++
	t.inputTokens += inputTokens
	t.outputTokens += outputTokens
	t.cost += pricing.Cost(inputTokens, outputTokens)
	return nil
}

// Summary returns the totals accumulated so far.
func (t *Tally) Summary() (invocations int, inputTokens, outputTokens int64, cost float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.invocations, t.inputTokens, t.outputTokens, t.cost
}
