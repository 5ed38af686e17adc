// Package lifecycle implements the task status state machine.
//
// The machine is stateless: it holds only the transition table, never
// task storage. Callers pass the task to mutate on a successful
// transition.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/paulcedrick/agentos/pkg/models"
)

// TransitionError indicates an attempted illegal state-machine edge.
// It is a programming fault, not a task-level failure.
type TransitionError struct {
	// TaskID identifies the task the transition was attempted on.
	TaskID string
	// From is the status the task was in.
	From models.TaskStatus
	// To is the status that was requested.
	To models.TaskStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal task transition %s -> %s (task %s)", e.From, e.To, e.TaskID)
}

// transitions is the allowed edge table. Absence means the edge is illegal;
// there are no implicit self-loops. "failed -> pending" is the retry
// re-entry point; "completed" is terminal.
var transitions = map[models.TaskStatus][]models.TaskStatus{
	models.TaskStatusPending:    {models.TaskStatusClaimed},
	models.TaskStatusClaimed:    {models.TaskStatusInProgress, models.TaskStatusFailed},
	models.TaskStatusInProgress: {models.TaskStatusBlocked, models.TaskStatusCompleted, models.TaskStatusFailed},
	models.TaskStatusBlocked:    {models.TaskStatusInProgress, models.TaskStatusFailed},
	models.TaskStatusCompleted:  {},
	models.TaskStatusFailed:     {models.TaskStatusPending},
}

// Machine validates and applies task status transitions.
type Machine struct{}

// NewMachine returns a task lifecycle state machine.
func NewMachine() *Machine {
	return &Machine{}
}

// CanTransition reports whether from -> to is an allowed edge.
func (m *Machine) CanTransition(from, to models.TaskStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition moves the task to the given status. On success the task's
// status is updated and, for claimed / completed / failed targets, the
// corresponding timestamp is stamped. On an illegal edge the task is left
// untouched and a *TransitionError is returned.
func (m *Machine) Transition(task *models.Task, to models.TaskStatus) error {
	if task == nil {
		return fmt.Errorf("transition: nil task")
	}
	if !m.CanTransition(task.Status, to) {
		return &TransitionError{TaskID: task.ID, From: task.Status, To: to}
	}

	task.Status = to
	now := time.Now()
	switch to {
	case models.TaskStatusClaimed:
		task.ClaimedAt = &now
	case models.TaskStatusCompleted, models.TaskStatusFailed:
		task.CompletedAt = &now
	}
	return nil
}
