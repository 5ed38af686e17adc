// Package scheduler drives a goal's task batch to completion, honoring
// declared dependencies.
//
// The scheduler is a pass-based fixed point rather than a topological
// sort: each pass dispatches every task whose dependencies are satisfied,
// immediately blocks tasks with unknown or doomed dependencies, and skips
// the rest for a later pass. A pass that makes no progress means an
// unresolvable cycle; everything still remaining is blocked and the loop
// terminates, bounded by one pass per task.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/paulcedrick/agentos/internal/lifecycle"
	"github.com/paulcedrick/agentos/internal/route"
	"github.com/paulcedrick/agentos/internal/stage"
	"github.com/paulcedrick/agentos/internal/store"
	"github.com/paulcedrick/agentos/pkg/models"
)

// Outcome summarizes how a goal's task batch settled.
type Outcome struct {
	// Completed is the number of tasks that finished successfully.
	Completed int
	// Failed is the number of tasks that failed during execution.
	Failed int
	// Blocked is the number of tasks that could not be dispatched.
	Blocked int
}

// Scheduler coordinates routing, clarification, lifecycle transitions,
// and execution for one goal's tasks. Tasks within a goal are processed
// sequentially so dependency ordering and reporting stay deterministic.
type Scheduler struct {
	router    *route.Router
	clarifier *stage.Clarifier
	executor  *stage.Executor
	machine   *lifecycle.Machine
	source    store.GoalSource
}

// New creates a Scheduler.
func New(router *route.Router, clarifier *stage.Clarifier, executor *stage.Executor, machine *lifecycle.Machine, source store.GoalSource) *Scheduler {
	return &Scheduler{
		router:    router,
		clarifier: clarifier,
		executor:  executor,
		machine:   machine,
		source:    source,
	}
}

// ExecuteGoalTasks runs the goal's task batch to a fixed point. The
// returned error is non-nil only for programming faults (an illegal
// lifecycle transition on a guaranteed-legal edge); task-level failures
// are absorbed into the outcome counts.
func (s *Scheduler) ExecuteGoalTasks(ctx context.Context, tasks []*models.Task, goal *models.Goal) (Outcome, error) {
	batch := make(map[string]bool, len(tasks))
	for _, task := range tasks {
		batch[task.ID] = true
	}

	remaining := make(map[string]*models.Task, len(tasks))
	order := make([]string, 0, len(tasks))
	for _, task := range tasks {
		remaining[task.ID] = task
		order = append(order, task.ID)
	}

	completed := make(map[string]bool)
	failed := make(map[string]bool)
	blocked := make(map[string]bool)

	for len(remaining) > 0 {
		progress := false

		for _, id := range order {
			task, ok := remaining[id]
			if !ok {
				continue
			}

			if unknown := firstUnknownDep(task, batch); unknown != "" {
				s.block(ctx, task, fmt.Sprintf("unknown dependency %s", unknown))
				blocked[id] = true
				delete(remaining, id)
				progress = true
				continue
			}

			if dep := firstDoomedDep(task, failed, blocked); dep != "" {
				s.block(ctx, task, fmt.Sprintf("blocked by dependency %s", dep))
				blocked[id] = true
				delete(remaining, id)
				progress = true
				continue
			}

			if !depsSatisfied(task, completed) {
				// Wait for a later pass.
				continue
			}

			dispatched, err := s.dispatch(ctx, task, goal)
			if err != nil {
				return outcome(completed, failed, blocked), err
			}

			switch dispatched {
			case models.TaskStatusCompleted:
				completed[id] = true
			case models.TaskStatusFailed:
				failed[id] = true
			default:
				blocked[id] = true
			}
			delete(remaining, id)
			progress = true
		}

		if !progress {
			// A full pass removed nothing: every remaining task waits on
			// another remaining task, a true cycle.
			for _, id := range order {
				task, ok := remaining[id]
				if !ok {
					continue
				}
				s.block(ctx, task, "unresolvable dependencies")
				blocked[id] = true
				delete(remaining, id)
			}
		}
	}

	return outcome(completed, failed, blocked), nil
}

// DeriveGoalStatus maps a settled outcome onto the goal's terminal
// status: any failure dooms the goal, any blockage stalls it, otherwise
// it completed.
func DeriveGoalStatus(o Outcome) models.GoalStatus {
	switch {
	case o.Failed > 0:
		return models.GoalStatusFailed
	case o.Blocked > 0:
		return models.GoalStatusBlocked
	default:
		return models.GoalStatusCompleted
	}
}

// dispatch runs a single ready task and returns its settled status.
// The returned error is reserved for illegal lifecycle transitions.
func (s *Scheduler) dispatch(ctx context.Context, task *models.Task, goal *models.Goal) (models.TaskStatus, error) {
	worker := s.router.FindWorker(task, goal.TeamID)
	if worker == nil {
		s.block(ctx, task, "no eligible worker in team "+goal.TeamID)
		return models.TaskStatusBlocked, nil
	}

	assessment, err := s.clarifier.AssessTask(ctx, task, goal)
	if err != nil {
		// The task never entered the lifecycle and the table has no
		// pending -> failed edge, so settle it directly like block does.
		// Aborting here would take the goal's sibling tasks down with it.
		return s.failEarly(ctx, task, fmt.Errorf("clarify task: %w", err)), nil
	}
	if assessment.Blocking() {
		question := FormatQuestions(assessment.Questions)
		if rerr := s.source.RequestClarification(ctx, goal.ID, fmt.Sprintf("task %s needs clarification:\n%s", task.ID, question)); rerr != nil {
			log.Printf("[scheduler] task %s: request clarification failed: %v", task.ID, rerr)
		}
		s.block(ctx, task, "blocking clarification")
		return models.TaskStatusBlocked, nil
	}

	claimed, err := s.source.Claim(ctx, task.ID, worker.ID)
	if err != nil {
		log.Printf("[scheduler] task %s: claim error: %v", task.ID, err)
		claimed = false
	}
	if !claimed {
		// Another actor owns the task; skip without marking it failed.
		s.block(ctx, task, "already claimed by another actor")
		return models.TaskStatusBlocked, nil
	}

	task.AssignedTo = worker.ID

	// These edges are always legal from pending; a failure here is a
	// programming fault that aborts the goal.
	if err := s.machine.Transition(task, models.TaskStatusClaimed); err != nil {
		return task.Status, err
	}
	s.report(ctx, task, fmt.Sprintf("claimed by %s", worker.ID))

	if err := s.machine.Transition(task, models.TaskStatusInProgress); err != nil {
		return task.Status, err
	}
	s.report(ctx, task, "execution started")

	result, err := s.executor.Run(ctx, task, goal)
	if err != nil {
		return s.fail(ctx, task, err)
	}

	task.Result = result
	if terr := s.machine.Transition(task, models.TaskStatusCompleted); terr != nil {
		return task.Status, terr
	}
	s.report(ctx, task, result.Summary)
	return models.TaskStatusCompleted, nil
}

// fail moves an in-flight task to failed and reports the cause.
func (s *Scheduler) fail(ctx context.Context, task *models.Task, cause error) (models.TaskStatus, error) {
	if terr := s.machine.Transition(task, models.TaskStatusFailed); terr != nil {
		return task.Status, terr
	}
	s.report(ctx, task, cause.Error())
	return models.TaskStatusFailed, nil
}

// failEarly settles a task that errored before it entered the
// lifecycle. Like block, it bypasses the machine: the task was still
// pending and there is no pending -> failed edge.
func (s *Scheduler) failEarly(ctx context.Context, task *models.Task, cause error) models.TaskStatus {
	task.Status = models.TaskStatusFailed
	log.Printf("[scheduler] task %s failed: %v", task.ID, cause)
	s.report(ctx, task, cause.Error())
	return models.TaskStatusFailed
}

// block marks a task blocked outside the execution path. Dependency and
// routing blockage bypasses the lifecycle machine: the task never started.
func (s *Scheduler) block(ctx context.Context, task *models.Task, reason string) {
	task.Status = models.TaskStatusBlocked
	log.Printf("[scheduler] task %s blocked: %s", task.ID, reason)
	s.report(ctx, task, reason)
}

// report sends a task-level status report; failures are logged only.
func (s *Scheduler) report(ctx context.Context, task *models.Task, message string) {
	err := s.source.Report(ctx, task.ID, string(task.Status), message, store.ReportOptions{
		Entity: store.EntityTask,
		TeamID: task.TeamID,
	})
	if err != nil {
		log.Printf("[scheduler] task %s: report failed: %v", task.ID, err)
	}
}

// FormatQuestions renders clarification questions with their urgency and
// a BLOCKING/Non-blocking label, one per line.
func FormatQuestions(questions []stage.Question) string {
	if len(questions) == 0 {
		return "- (no specific questions; statement is too vague to act on)"
	}

	var b strings.Builder
	for i, q := range questions {
		label := "Non-blocking"
		if q.Blocking {
			label = "BLOCKING"
		}
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- [%s, urgency=%s] %s", label, q.Urgency, q.Question)
		if q.AssumptionIfUnanswered != "" {
			fmt.Fprintf(&b, " (assumption if unanswered: %s)", q.AssumptionIfUnanswered)
		}
	}
	return b.String()
}

func firstUnknownDep(task *models.Task, batch map[string]bool) string {
	for _, dep := range task.DependsOn {
		if !batch[dep] {
			return dep
		}
	}
	return ""
}

func firstDoomedDep(task *models.Task, failed, blocked map[string]bool) string {
	for _, dep := range task.DependsOn {
		if failed[dep] || blocked[dep] {
			return dep
		}
	}
	return ""
}

func depsSatisfied(task *models.Task, completed map[string]bool) bool {
	for _, dep := range task.DependsOn {
		if !completed[dep] {
			return false
		}
	}
	return true
}

func outcome(completed, failed, blocked map[string]bool) Outcome {
	return Outcome{
		Completed: len(completed),
		Failed:    len(failed),
		Blocked:   len(blocked),
	}
}
