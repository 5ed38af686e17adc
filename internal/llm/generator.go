package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
)

// Usage holds token counters for one generation.
type Usage struct {
	// PromptTokens is the number of input tokens consumed.
	PromptTokens int64
	// CompletionTokens is the number of output tokens produced.
	CompletionTokens int64
}

// Completion is the normalized result of one generative call.
type Completion struct {
	// Text is the concatenated text content of the response.
	Text string
	// Usage carries the provider-reported token counts.
	Usage Usage
}

// TextGenerator executes a single generative call against a model.
// Implementations must honor context cancellation: when the context is
// canceled or times out, the in-flight request is aborted.
type TextGenerator interface {
	Generate(ctx context.Context, model, prompt string) (*Completion, error)
}

// Generator is the Anthropic-backed TextGenerator.
type Generator struct {
	client    *Client
	maxTokens int64
	system    string
}

// GeneratorConfig contains configuration for creating a Generator.
type GeneratorConfig struct {
	// Client is the underlying Anthropic client.
	Client *Client
	// MaxTokens caps the response length. Defaults to 8192.
	MaxTokens int64
	// System is the system prompt applied to every call.
	System string
}

// NewGenerator creates an Anthropic-backed generator.
func NewGenerator(cfg GeneratorConfig) *Generator {
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 8192
	}
	system := cfg.System
	if system == "" {
		system = "You are a work-planning assistant. Respond with JSON exactly as instructed."
	}
	return &Generator{
		client:    cfg.Client,
		maxTokens: maxTokens,
		system:    system,
	}
}

// Generate issues one Messages API call and returns the normalized text
// plus token usage.
func (g *Generator) Generate(ctx context.Context, model, prompt string) (*Completion, error) {
	resolved := anthropic.Model(g.client.TranslateModel(model))

	resp, err := g.client.sdk().Messages.New(ctx, anthropic.MessageNewParams{
		Model:     resolved,
		MaxTokens: g.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: g.system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("API call failed: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return &Completion{
		Text: text.String(),
		Usage: Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
		},
	}, nil
}
