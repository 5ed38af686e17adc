// Package invoke executes generative calls for pipeline stages with model
// fallback, retry, timeout, and cost accounting.
package invoke

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/paulcedrick/agentos/internal/llm"
)

// Stage names one step of the goal pipeline. Each stage carries its own
// invocation configuration.
type Stage string

const (
	// StageParse turns raw goal text into a structured goal.
	StageParse Stage = "parse"
	// StageClarify decides whether execution may proceed.
	StageClarify Stage = "clarify"
	// StageDecompose produces the task list for a goal.
	StageDecompose Stage = "decompose"
	// StageExecute performs one task.
	StageExecute Stage = "execute"
)

// StageConfig is the per-stage invocation configuration.
type StageConfig struct {
	// Primary is the model alias attempted first.
	Primary string
	// Fallback is the model alias attempted after the primary is
	// exhausted. Empty or equal to the resolved primary means no fallback.
	Fallback string
	// Timeout bounds each individual attempt.
	Timeout time.Duration
	// MaxRetries is the number of retries per model beyond the first
	// attempt, so each candidate gets MaxRetries+1 attempts.
	MaxRetries int
}

// ExecuteConfig extends StageConfig for the execute stage with
// task-type-biased model selection.
type ExecuteConfig struct {
	StageConfig
	// DefaultModel is used when the task type has no override.
	DefaultModel string
	// TaskTypeModels maps a task type to the model alias used for it.
	TaskTypeModels map[string]string
}

// Options tunes a single Generate call.
type Options struct {
	// Model overrides the configured primary when set.
	Model string
	// TaskType biases execute-stage model selection.
	TaskType string
}

// Usage holds token counters for one invocation.
type Usage struct {
	// PromptTokens is the number of input tokens consumed.
	PromptTokens int64
	// CompletionTokens is the number of output tokens produced.
	CompletionTokens int64
}

// Response is the normalized result of one stage invocation.
type Response struct {
	// Text is the raw text returned by the model.
	Text string
	// Usage carries the token counts for the successful attempt.
	Usage Usage
	// Model is the alias that produced the response.
	Model string
}

// CostSink receives usage records for every successful invocation.
// A nil sink is valid; cost accounting is optional.
type CostSink interface {
	Record(stage, model string, inputTokens, outputTokens int64, pricing ModelPricing) error
}

// Invoker executes generative calls with provider abstraction, fallback,
// retry, and timeout. The pricing table is built once at construction and
// never mutated; callers receive a configured instance rather than
// reaching into package globals.
type Invoker struct {
	gen     llm.TextGenerator
	stages  map[Stage]StageConfig
	execute ExecuteConfig
	pricing map[string]ModelPricing
	costs   CostSink
}

// InvokerConfig contains everything needed to construct an Invoker.
type InvokerConfig struct {
	// Generator performs the underlying generative calls.
	Generator llm.TextGenerator
	// Stages maps parse/clarify/decompose to their configurations.
	Stages map[Stage]StageConfig
	// Execute is the execute-stage configuration.
	Execute ExecuteConfig
	// Pricing is the per-model price table. Nil uses DefaultPricing.
	Pricing map[string]ModelPricing
	// Costs receives usage records. Nil disables cost forwarding.
	Costs CostSink
}

// NewInvoker creates an Invoker from the given configuration.
func NewInvoker(cfg InvokerConfig) (*Invoker, error) {
	if cfg.Generator == nil {
		return nil, fmt.Errorf("invoker: generator is required")
	}

	pricing := cfg.Pricing
	if pricing == nil {
		pricing = DefaultPricing()
	}

	stages := make(map[Stage]StageConfig, len(cfg.Stages))
	for stage, sc := range cfg.Stages {
		stages[stage] = sc
	}

	return &Invoker{
		gen:     cfg.Generator,
		stages:  stages,
		execute: cfg.Execute,
		pricing: pricing,
		costs:   cfg.Costs,
	}, nil
}

// stageConfig resolves the configuration for a stage.
func (inv *Invoker) stageConfig(stage Stage) StageConfig {
	if stage == StageExecute {
		return inv.execute.StageConfig
	}
	return inv.stages[stage]
}

// candidates resolves the ordered model list for one invocation:
// the primary (or override), then the fallback if distinct.
func (inv *Invoker) candidates(stage Stage, cfg StageConfig, opts Options) []string {
	primary := opts.Model
	if primary == "" && stage == StageExecute {
		if model, ok := inv.execute.TaskTypeModels[opts.TaskType]; ok && model != "" {
			primary = model
		} else {
			primary = inv.execute.DefaultModel
		}
	}
	if primary == "" {
		primary = cfg.Primary
	}

	models := []string{primary}
	if cfg.Fallback != "" && cfg.Fallback != primary {
		models = append(models, cfg.Fallback)
	}
	return models
}

// Generate executes exactly one generative call for the stage, working
// through the candidate models with up to MaxRetries+1 attempts each.
// Each attempt runs under context.WithTimeout, which aborts the in-flight
// request when the stage timeout fires; a fired timeout counts as a
// retryable failure. The error returned after full exhaustion is an
// *InvocationError wrapping the last observed error.
func (inv *Invoker) Generate(ctx context.Context, stage Stage, prompt string, opts Options) (*Response, error) {
	cfg := inv.stageConfig(stage)
	models := inv.candidates(stage, cfg, opts)

	attempts := cfg.MaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for _, model := range models {
		for attempt := 1; attempt <= attempts; attempt++ {
			comp, err := inv.attempt(ctx, model, prompt, cfg.Timeout)
			if err != nil {
				lastErr = err
				log.Printf("[invoke] stage=%s model=%s attempt=%d/%d failed: %v",
					stage, model, attempt, attempts, err)
				continue
			}

			inv.recordCost(stage, model, comp.Usage)
			return &Response{
				Text: comp.Text,
				Usage: Usage{
					PromptTokens:     comp.Usage.PromptTokens,
					CompletionTokens: comp.Usage.CompletionTokens,
				},
				Model: model,
			}, nil
		}
	}

	return nil, &InvocationError{Stage: stage, Models: models, Err: lastErr}
}

// attempt runs one bounded call against a single model.
func (inv *Invoker) attempt(ctx context.Context, model, prompt string, timeout time.Duration) (*llm.Completion, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return inv.gen.Generate(ctx, model, prompt)
}

// recordCost estimates and logs the call cost and forwards usage to the
// cost sink. Sink failures are logged and never fail the invocation.
func (inv *Invoker) recordCost(stage Stage, model string, usage llm.Usage) {
	pricing, ok := inv.pricing[model]
	if !ok {
		log.Printf("[invoke] stage=%s model=%s: no pricing configured, cost not estimated", stage, model)
	}
	cost := pricing.Cost(usage.PromptTokens, usage.CompletionTokens)
	log.Printf("[invoke] stage=%s model=%s tokens_in=%d tokens_out=%d cost=$%.4f",
		stage, model, usage.PromptTokens, usage.CompletionTokens, cost)

	if inv.costs == nil {
		return
	}
	if err := inv.costs.Record(string(stage), model, usage.PromptTokens, usage.CompletionTokens, pricing); err != nil {
		log.Printf("[invoke] stage=%s model=%s: cost sink failed: %v", stage, model, err)
	}
}
