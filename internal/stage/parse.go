// Package stage implements the four pipeline stage executors: parse,
// clarify, decompose, and execute. Each executor owns one prompt template
// and one output schema, issues exactly one invocation through the
// invoke layer, and converts the response into a domain object.
package stage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/paulcedrick/agentos/internal/invoke"
	"github.com/paulcedrick/agentos/pkg/models"
)

// parsedGoal is the JSON structure returned by the model for goal parsing.
type parsedGoal struct {
	Description     string   `json:"description"`
	SuccessCriteria []string `json:"success_criteria"`
	Context         string   `json:"context"`
	Priority        string   `json:"priority"`
}

// Validate checks the parse schema.
func (g *parsedGoal) Validate() error {
	if strings.TrimSpace(g.Description) == "" {
		return fmt.Errorf("missing description")
	}
	if len(g.SuccessCriteria) == 0 {
		return fmt.Errorf("missing success_criteria")
	}
	if g.Priority != "" && !models.Priority(g.Priority).Valid() {
		return fmt.Errorf("invalid priority %q", g.Priority)
	}
	return nil
}

// ParseInput carries the caller-supplied identity fields for a goal being
// parsed. These fill everything the raw text cannot provide.
type ParseInput struct {
	// GoalID is the id assigned at ingestion.
	GoalID string
	// TeamID is the team the goal belongs to.
	TeamID string
	// RawText is the free-text goal statement.
	RawText string
	// CreatedBy identifies the submitter; empty becomes "unknown".
	CreatedBy string
	// CreatedAt is the ingestion timestamp.
	CreatedAt time.Time
}

// Parser turns raw goal text into a structured Goal.
type Parser struct {
	invoker *invoke.Invoker
}

// NewParser creates a parse stage executor.
func NewParser(invoker *invoke.Invoker) *Parser {
	return &Parser{invoker: invoker}
}

// Run parses the raw goal text into a structured goal draft. Identity
// fields come from the input, never from the model.
func (p *Parser) Run(ctx context.Context, in ParseInput) (*models.Goal, error) {
	resp, err := p.invoker.Generate(ctx, invoke.StageParse, fmt.Sprintf(parsePrompt, in.RawText), invoke.Options{})
	if err != nil {
		return nil, err
	}

	var parsed parsedGoal
	if err := invoke.DecodeJSON(resp.Text, invoke.SnakeCase, &parsed); err != nil {
		return nil, err
	}

	priority := models.Priority(parsed.Priority)
	if parsed.Priority == "" {
		priority = models.PriorityMedium
	}

	createdBy := in.CreatedBy
	if createdBy == "" {
		createdBy = "unknown"
	}

	return &models.Goal{
		ID:              in.GoalID,
		TeamID:          in.TeamID,
		Description:     parsed.Description,
		SuccessCriteria: parsed.SuccessCriteria,
		Context:         parsed.Context,
		Priority:        priority,
		Status:          models.GoalStatusPending,
		CreatedBy:       createdBy,
		CreatedAt:       in.CreatedAt,
	}, nil
}
