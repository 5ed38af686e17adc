package stage

import (
	"context"
	"fmt"
	"strings"

	"github.com/paulcedrick/agentos/internal/invoke"
	"github.com/paulcedrick/agentos/pkg/models"
)

// maxTasks bounds how many tasks one decomposition may produce.
const maxTasks = 10

// decomposedTask is the JSON structure returned by the model for a single task.
type decomposedTask struct {
	Description          string   `json:"description"`
	Type                 string   `json:"type"`
	RequiredCapabilities []string `json:"required_capabilities"`
	Effort               string   `json:"effort"`
	DependsOn            []int    `json:"depends_on"`
}

// decomposition is the full decompose stage output.
type decomposition struct {
	Tasks []decomposedTask `json:"tasks"`
}

// Validate checks the decompose schema, including dependency ordinals.
// A self-referential ordinal is rejected here rather than silently
// dropped.
func (d *decomposition) Validate() error {
	if len(d.Tasks) == 0 {
		return fmt.Errorf("empty task list")
	}
	if len(d.Tasks) > maxTasks {
		return fmt.Errorf("%d tasks exceeds the maximum of %d", len(d.Tasks), maxTasks)
	}
	for i, task := range d.Tasks {
		if strings.TrimSpace(task.Description) == "" {
			return fmt.Errorf("task %d: missing description", i)
		}
		if strings.TrimSpace(task.Type) == "" {
			return fmt.Errorf("task %d: missing type", i)
		}
		for _, dep := range task.DependsOn {
			if dep == i {
				return fmt.Errorf("task %d depends on itself", i)
			}
			if dep < 0 || dep >= len(d.Tasks) {
				return fmt.Errorf("task %d: dependency ordinal %d out of range", i, dep)
			}
		}
	}
	return nil
}

// Decomposer breaks a goal into tasks with declared dependencies.
type Decomposer struct {
	invoker *invoke.Invoker
}

// NewDecomposer creates a decompose stage executor.
func NewDecomposer(invoker *invoke.Invoker) *Decomposer {
	return &Decomposer{invoker: invoker}
}

// Run decomposes the goal into 1-10 tasks. Ordinal dependency references
// in the model output are rewritten into stable task ids of the form
// {goalID}-task-{ordinal+1} before returning.
func (d *Decomposer) Run(ctx context.Context, goal *models.Goal) ([]*models.Task, error) {
	criteria := "- (none stated)"
	if len(goal.SuccessCriteria) > 0 {
		criteria = "- " + strings.Join(goal.SuccessCriteria, "\n- ")
	}
	prompt := fmt.Sprintf(decomposePrompt, goal.Description, criteria, goal.Context)

	resp, err := d.invoker.Generate(ctx, invoke.StageDecompose, prompt, invoke.Options{})
	if err != nil {
		return nil, err
	}

	var decomposed decomposition
	if err := invoke.DecodeJSON(resp.Text, invoke.SnakeCase, &decomposed); err != nil {
		return nil, err
	}

	tasks := make([]*models.Task, len(decomposed.Tasks))
	for i, dt := range decomposed.Tasks {
		var deps []string
		for _, ordinal := range dt.DependsOn {
			deps = append(deps, models.TaskID(goal.ID, ordinal))
		}

		tasks[i] = &models.Task{
			ID:                   models.TaskID(goal.ID, i),
			GoalID:               goal.ID,
			TeamID:               goal.TeamID,
			Description:          dt.Description,
			Type:                 dt.Type,
			RequiredCapabilities: dt.RequiredCapabilities,
			DependsOn:            deps,
			Status:               models.TaskStatusPending,
		}
	}

	return tasks, nil
}
