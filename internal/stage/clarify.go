package stage

import (
	"context"
	"fmt"
	"strings"

	"github.com/paulcedrick/agentos/internal/invoke"
	"github.com/paulcedrick/agentos/pkg/models"
)

// MinConfidence is the clarity confidence below which execution is
// blocked regardless of anything else the assessment says. Deliberately a
// constant, not configuration.
const MinConfidence = 60

// Question is one clarification question raised by the clarify stage.
type Question struct {
	// Question is what needs answering.
	Question string `json:"question"`
	// Blocking indicates work cannot proceed without the answer.
	Blocking bool `json:"blocking"`
	// Urgency is low, medium, or high.
	Urgency string `json:"urgency"`
	// Why explains what hinges on the answer.
	Why string `json:"why"`
	// AssumptionIfUnanswered states what will be assumed otherwise.
	AssumptionIfUnanswered string `json:"assumptionIfUnanswered"`
}

// Assessment is the clarify stage output for a goal or task.
type Assessment struct {
	// IsClearEnough is the model's direct judgment.
	IsClearEnough *bool `json:"isClearEnough"`
	// Confidence is an integer 0-100.
	Confidence *int `json:"confidence"`
	// Questions lists everything worth asking.
	Questions []Question `json:"questions"`
}

// Validate checks the clarify schema.
func (a *Assessment) Validate() error {
	if a.IsClearEnough == nil {
		return fmt.Errorf("missing isClearEnough")
	}
	if a.Confidence == nil {
		return fmt.Errorf("missing confidence")
	}
	if *a.Confidence < 0 || *a.Confidence > 100 {
		return fmt.Errorf("confidence %d out of range 0-100", *a.Confidence)
	}
	for i, q := range a.Questions {
		if strings.TrimSpace(q.Question) == "" {
			return fmt.Errorf("question %d is empty", i)
		}
	}
	return nil
}

/// Blocking derives the single blocking decision from the assessment:
// unclear, low confidence, or any individually blocking question.
func (a *Assessment) Blocking() bool {
	if a.IsClearEnough == nil || !*a.IsClearEnough {
		return true
	}
	if a.Confidence == nil || *a.Confidence < MinConfidence {
		return true
	}
	for _, q := range a.Questions {
		if q.Blocking {
			return true
		}
	}
	return false
}

// Clarifier decides whether a goal or task is clear enough to proceed.
type Clarifier struct {
	invoker *invoke.Invoker
}

// NewClarifier creates a clarify stage executor.
func NewClarifier(invoker *invoke.Invoker) *Clarifier {
	return &Clarifier{invoker: invoker}
}

// AssessGoal runs goal-level clarification.
func (c *Clarifier) AssessGoal(ctx context.Context, goal *models.Goal) (*Assessment, error) {
	criteria := "- (none stated)"
	if len(goal.SuccessCriteria) > 0 {
		criteria = "- " + strings.Join(goal.SuccessCriteria, "\n- ")
	}
	prompt := fmt.Sprintf(clarifyGoalPrompt, goal.Description, criteria)
	return c.run(ctx, prompt)
}

// AssessTask runs task-level clarification.
func (c *Clarifier) AssessTask(ctx context.Context, task *models.Task, goal *models.Goal) (*Assessment, error) {
	prompt := fmt.Sprintf(clarifyTaskPrompt, task.Description, goal.Description)
	return c.run(ctx, prompt)
}

func (c *Clarifier) run(ctx context.Context, prompt string) (*Assessment, error) {
	resp, err := c.invoker.Generate(ctx, invoke.StageClarify, prompt, invoke.Options{})
	if err != nil {
		return nil, err
	}

	var assessment Assessment
	if err := invoke.DecodeJSON(resp.Text, invoke.CamelCase, &assessment); err != nil {
		return nil, err
	}
	return &assessment, nil
}
