package models

import (
	"fmt"
	"time"
)

// TaskStatus represents the current state of a task.
type TaskStatus string

const (
	// TaskStatusPending indicates the task has not started.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusClaimed indicates a worker has been assigned exclusively.
	TaskStatusClaimed TaskStatus = "claimed"
	// TaskStatusInProgress indicates the task is being worked on.
	TaskStatusInProgress TaskStatus = "in_progress"
	// TaskStatusBlocked indicates the task cannot proceed.
	TaskStatusBlocked TaskStatus = "blocked"
	// TaskStatusCompleted indicates the task completed successfully.
	TaskStatusCompleted TaskStatus = "completed"
	// TaskStatusFailed indicates the task failed.
	TaskStatusFailed TaskStatus = "failed"
)

// Valid returns true if the status is a known value.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusClaimed, TaskStatusInProgress,
		TaskStatusBlocked, TaskStatusCompleted, TaskStatusFailed:
		return true
	default:
		return false
	}
}

// Task represents one unit of decomposed work derived from a goal.
type Task struct {
	// ID is derived deterministically from the goal id and ordinal position,
	// so re-decomposition of the same goal stays traceable.
	ID string `json:"id"`
	// GoalID is the id of the goal this task was decomposed from.
	GoalID string `json:"goal_id"`
	// TeamID is inherited from the owning goal.
	TeamID string `json:"team_id"`
	// Description explains the work to perform.
	Description string `json:"description"`
	// Type tags the kind of work (research, code, write, review, ...).
	// The set is open; treat as a string tag.
	Type string `json:"type"`
	// RequiredCapabilities lists the capabilities a worker needs.
	RequiredCapabilities []string `json:"required_capabilities,omitempty"`
	// DependsOn lists task ids that must complete before this task.
	DependsOn []string `json:"depends_on,omitempty"`
	// Status is the current state of the task.
	Status TaskStatus `json:"status"`
	// AssignedTo is the id of the worker assigned to this task.
	AssignedTo string `json:"assigned_to,omitempty"`
	// ClaimedAt is when the task was claimed, if it has been.
	ClaimedAt *time.Time `json:"claimed_at,omitempty"`
	// CompletedAt is when the task reached a terminal state, if it has.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	// Result holds the outcome of a successfully executed task.
	Result *TaskResult `json:"result,omitempty"`
}

// TaskID returns the stable task id for the given goal and 0-based ordinal.
func TaskID(goalID string, ordinal int) string {
	return fmt.Sprintf("%s-task-%d", goalID, ordinal+1)
}

// Artifact is a typed pointer to something a task produced. Only the
// location is carried; artifact content is never owned by the core.
type Artifact struct {
	// Kind categorizes the artifact (document, code, link, ...).
	Kind string `json:"kind"`
	// Name is a human-readable label.
	Name string `json:"name"`
	// Location points at where the artifact lives.
	Location string `json:"location"`
}

// TaskMetrics captures resource usage for one task execution.
type TaskMetrics struct {
	// Duration is the wall-clock time from invocation start to response receipt.
	Duration time.Duration `json:"duration"`
	// InputTokens is the number of prompt tokens consumed.
	InputTokens int64 `json:"input_tokens"`
	// OutputTokens is the number of completion tokens produced.
	OutputTokens int64 `json:"output_tokens"`
}

// TaskResult is produced once per task on terminal success.
type TaskResult struct {
	// Summary is a human-readable description of what was done.
	Summary string `json:"summary"`
	// Artifacts lists references to anything produced.
	Artifacts []Artifact `json:"artifacts,omitempty"`
	// Metrics captures duration and token usage.
	Metrics TaskMetrics `json:"metrics"`
}
