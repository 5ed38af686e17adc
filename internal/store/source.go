// Package store defines the goal-source collaborator contract and its
// SQLite implementation.
package store

import (
	"context"

	"github.com/paulcedrick/agentos/pkg/models"
)

// Entity discriminates what a status report refers to.
type Entity string

const (
	// EntityGoal marks a goal-level report.
	EntityGoal Entity = "goal"
	// EntityTask marks a task-level report.
	EntityTask Entity = "task"
)

// ReportOptions qualifies a status report.
type ReportOptions struct {
	// Entity says whether the id names a goal or a task.
	Entity Entity
	// TeamID scopes the report when known.
	TeamID string
}

// GoalSource is the collaborator that owns goal persistence and external
// status visibility. Claim must be atomic-exclusive: the first caller
// wins and every later caller for the same id receives false, across
// processes. Report is fire-and-forget from the scheduler's perspective;
// its failures are logged by callers, never propagated.
type GoalSource interface {
	// PollGoals returns goals in a pending state. An empty teamID means
	// all teams.
	PollGoals(ctx context.Context, teamID string) ([]*models.Goal, error)

	// Claim exclusively assigns a goal or task to a worker. Returns false
	// when another actor already holds the claim.
	Claim(ctx context.Context, id, workerID string) (bool, error)

	// Report records a status change for external observation.
	Report(ctx context.Context, id, status, message string, opts ReportOptions) error

	// RequestClarification surfaces questions that block a goal.
	RequestClarification(ctx context.Context, goalID, question string) error

	// Notify delivers a free-form message to whoever watches the source.
	Notify(ctx context.Context, message string) error
}
