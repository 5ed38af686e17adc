// Package pipeline drives goals from raw text to settled status: parse,
// clarify, decompose, schedule.
package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/paulcedrick/agentos/internal/scheduler"
	"github.com/paulcedrick/agentos/internal/stage"
	"github.com/paulcedrick/agentos/internal/store"
	"github.com/paulcedrick/agentos/pkg/models"
)

// Pipeline owns one processing cycle: it polls the goal source and runs
// every pending goal through the stage executors and the scheduler.
type Pipeline struct {
	parser     *stage.Parser
	clarifier  *stage.Clarifier
	decomposer *stage.Decomposer
	scheduler  *scheduler.Scheduler
	source     store.GoalSource
}

// New creates a Pipeline.
func New(parser *stage.Parser, clarifier *stage.Clarifier, decomposer *stage.Decomposer, sched *scheduler.Scheduler, source store.GoalSource) *Pipeline {
	return &Pipeline{
		parser:     parser,
		clarifier:  clarifier,
		decomposer: decomposer,
		scheduler:  sched,
		source:     source,
	}
}

// RunCycle polls pending goals for the team (all teams when teamID is
// empty) and processes each one. A goal's failure — including a panic —
// is reported against that goal and never aborts the rest of the cycle.
func (p *Pipeline) RunCycle(ctx context.Context, teamID string) error {
	goals, err := p.source.PollGoals(ctx, teamID)
	if err != nil {
		return fmt.Errorf("poll goals: %w", err)
	}

	log.Printf("[pipeline] cycle start: %d pending goal(s) (team=%q)", len(goals), teamID)

	for _, goal := range goals {
		if err := p.processGoal(ctx, goal); err != nil {
			log.Printf("[pipeline] goal %s failed: %v", goal.ID, err)
			p.reportGoal(ctx, goal, models.GoalStatusFailed, err.Error())
		}
	}
	return nil
}

// processGoal runs one goal end to end. The recover converts a panic in
// any stage into an ordinary per-goal failure.
func (p *Pipeline) processGoal(ctx context.Context, goal *models.Goal) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing goal: %v", r)
		}
	}()

	parsed, err := p.parser.Run(ctx, stage.ParseInput{
		GoalID:    goal.ID,
		TeamID:    goal.TeamID,
		RawText:   goal.Description,
		CreatedBy: goal.CreatedBy,
		CreatedAt: goal.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("parse goal: %w", err)
	}
	parsed.Metadata = goal.Metadata

	p.reportGoal(ctx, parsed, models.GoalStatusInProgress, "processing started")

	assessment, err := p.clarifier.AssessGoal(ctx, parsed)
	if err != nil {
		return fmt.Errorf("clarify goal: %w", err)
	}
	if assessment.Blocking() {
		questions := scheduler.FormatQuestions(assessment.Questions)
		if rerr := p.source.RequestClarification(ctx, parsed.ID, questions); rerr != nil {
			log.Printf("[pipeline] goal %s: request clarification failed: %v", parsed.ID, rerr)
		}
		p.reportGoal(ctx, parsed, models.GoalStatusBlocked, "waiting on clarification")
		return nil
	}

	tasks, err := p.decomposer.Run(ctx, parsed)
	if err != nil {
		return fmt.Errorf("decompose goal: %w", err)
	}
	log.Printf("[pipeline] goal %s decomposed into %d task(s)", parsed.ID, len(tasks))

	out, err := p.scheduler.ExecuteGoalTasks(ctx, tasks, parsed)
	if err != nil {
		return fmt.Errorf("execute tasks: %w", err)
	}

	status := scheduler.DeriveGoalStatus(out)
	summary := fmt.Sprintf("tasks: %d completed, %d failed, %d blocked", out.Completed, out.Failed, out.Blocked)
	p.reportGoal(ctx, parsed, status, summary)

	if nerr := p.source.Notify(ctx, fmt.Sprintf("goal %s %s (%s)", parsed.ID, status, summary)); nerr != nil {
		log.Printf("[pipeline] goal %s: notify failed: %v", parsed.ID, nerr)
	}
	return nil
}

// reportGoal sends a goal-level status report; failures are logged only.
func (p *Pipeline) reportGoal(ctx context.Context, goal *models.Goal, status models.GoalStatus, message string) {
	goal.Status = status
	err := p.source.Report(ctx, goal.ID, string(status), message, store.ReportOptions{
		Entity: store.EntityGoal,
		TeamID: goal.TeamID,
	})
	if err != nil {
		log.Printf("[pipeline] goal %s: report failed: %v", goal.ID, err)
	}
}
