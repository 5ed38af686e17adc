// Package route matches tasks to capable workers within a team.
package route

import (
	"github.com/paulcedrick/agentos/pkg/models"
)

// FallbackPolicy decides what to do when no team member satisfies a
// task's required capabilities. It receives the active members in roster
// order and returns the worker to assign, or nil to leave the task
// unassigned. Kept as a named, swappable function so a stricter
// "exact match or block" policy can replace it without touching the
// scheduler.
type FallbackPolicy func(active []*models.WorkerDescriptor) *models.WorkerDescriptor

// FirstActiveFallback assigns the first active member in roster order.
// The task proceeds on a possibly under-qualified worker; downstream
// execution failure is the real safety net.
func FirstActiveFallback(active []*models.WorkerDescriptor) *models.WorkerDescriptor {
	if len(active) == 0 {
		return nil
	}
	return active[0]
}

// StrictFallback leaves unmatched tasks unassigned, which the scheduler
// treats as a blocking condition.
func StrictFallback(active []*models.WorkerDescriptor) *models.WorkerDescriptor {
	return nil
}

// Router selects an eligible worker for a task deterministically.
type Router struct {
	teams    map[string]*models.Team
	workers  map[string]*models.WorkerDescriptor
	fallback FallbackPolicy
}

// NewRouter creates a Router over the given teams and workers, using
// FirstActiveFallback for unmatched tasks.
func NewRouter(teams []*models.Team, workers []*models.WorkerDescriptor) *Router {
	r := &Router{
		teams:    make(map[string]*models.Team, len(teams)),
		workers:  make(map[string]*models.WorkerDescriptor, len(workers)),
		fallback: FirstActiveFallback,
	}
	for _, team := range teams {
		r.teams[team.ID] = team
	}
	for _, worker := range workers {
		r.workers[worker.ID] = worker
	}
	return r
}

// SetFallbackPolicy replaces the policy applied when no member matches.
func (r *Router) SetFallbackPolicy(policy FallbackPolicy) {
	if policy != nil {
		r.fallback = policy
	}
}

// FindWorker returns the first active team member (in roster order) whose
// capability set is a superset of the task's required capabilities. When
// none match, the fallback policy decides. An empty active roster yields
// nil, which callers treat as a blocking condition.
func (r *Router) FindWorker(task *models.Task, teamID string) *models.WorkerDescriptor {
	active := r.activeMembers(teamID)
	if len(active) == 0 {
		return nil
	}

	for _, worker := range active {
		if worker.CanHandle(task.RequiredCapabilities) {
			return worker
		}
	}
	return r.fallback(active)
}

// activeMembers returns the team's active workers in roster order.
func (r *Router) activeMembers(teamID string) []*models.WorkerDescriptor {
	team, ok := r.teams[teamID]
	if !ok {
		return nil
	}

	var active []*models.WorkerDescriptor
	for _, memberID := range team.Members {
		worker, ok := r.workers[memberID]
		if !ok || !worker.Active {
			continue
		}
		active = append(active, worker)
	}
	return active
}
