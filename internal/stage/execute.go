package stage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/paulcedrick/agentos/internal/invoke"
	"github.com/paulcedrick/agentos/pkg/models"
)

// artifactOut is the JSON structure for one produced artifact.
type artifactOut struct {
	Kind     string `json:"kind"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

// executed is the execute stage output schema.
type executed struct {
	Summary   string        `json:"summary"`
	Artifacts []artifactOut `json:"artifacts"`
}

// Validate checks the execute schema.
func (e *executed) Validate() error {
	if strings.TrimSpace(e.Summary) == "" {
		return fmt.Errorf("missing summary")
	}
	for i, a := range e.Artifacts {
		if strings.TrimSpace(a.Location) == "" {
			return fmt.Errorf("artifact %d: missing location", i)
		}
	}
	return nil
}

// Executor performs one task through the model and produces a TaskResult.
type Executor struct {
	invoker *invoke.Invoker
}

// NewExecutor creates an execute stage executor.
func NewExecutor(invoker *invoke.Invoker) *Executor {
	return &Executor{invoker: invoker}
}

// Run executes the task. Model selection is biased by task type through
// the invoke layer's task-type map. Duration is measured wall-clock from
// invocation start to response receipt.
func (e *Executor) Run(ctx context.Context, task *models.Task, goal *models.Goal) (*models.TaskResult, error) {
	criteria := "- (none stated)"
	if len(goal.SuccessCriteria) > 0 {
		criteria = "- " + strings.Join(goal.SuccessCriteria, "\n- ")
	}
	prompt := fmt.Sprintf(executePrompt, task.Description, task.Type, goal.Description, criteria)

	start := time.Now()
	resp, err := e.invoker.Generate(ctx, invoke.StageExecute, prompt, invoke.Options{TaskType: task.Type})
	if err != nil {
		return nil, err
	}
	duration := time.Since(start)

	var out executed
	if err := invoke.DecodeJSON(resp.Text, invoke.SnakeCase, &out); err != nil {
		return nil, err
	}

	artifacts := make([]models.Artifact, len(out.Artifacts))
	for i, a := range out.Artifacts {
		artifacts[i] = models.Artifact{Kind: a.Kind, Name: a.Name, Location: a.Location}
	}

	return &models.TaskResult{
		Summary:   out.Summary,
		Artifacts: artifacts,
		Metrics: models.TaskMetrics{
			Duration:     duration,
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}
