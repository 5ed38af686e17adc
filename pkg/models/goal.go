// Package models defines the core domain types shared across AgentOS.
package models

import "time"

// GoalStatus represents the current state of a goal.
type GoalStatus string

const (
	// GoalStatusPending indicates the goal has not been processed.
	GoalStatusPending GoalStatus = "pending"
	// GoalStatusInProgress indicates the goal is being worked on.
	GoalStatusInProgress GoalStatus = "in_progress"
	// GoalStatusBlocked indicates the goal cannot proceed without input.
	GoalStatusBlocked GoalStatus = "blocked"
	// GoalStatusCompleted indicates all of the goal's tasks completed.
	GoalStatusCompleted GoalStatus = "completed"
	// GoalStatusFailed indicates the goal could not be fulfilled.
	GoalStatusFailed GoalStatus = "failed"
)

// Valid returns true if the status is a known value.
func (s GoalStatus) Valid() bool {
	switch s {
	case GoalStatusPending, GoalStatusInProgress, GoalStatusBlocked,
		GoalStatusCompleted, GoalStatusFailed:
		return true
	default:
		return false
	}
}

// Priority indicates how urgently a goal should be handled.
type Priority string

const (
	// PriorityLow is for goals that can wait.
	PriorityLow Priority = "low"
	// PriorityMedium is the default priority.
	PriorityMedium Priority = "medium"
	// PriorityHigh is for goals that should jump the queue.
	PriorityHigh Priority = "high"
	// PriorityUrgent is for goals that need immediate attention.
	PriorityUrgent Priority = "urgent"
)

// Valid returns true if the priority is a known value.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

// Goal represents an externally sourced objective to be decomposed and fulfilled.
type Goal struct {
	// ID is the unique identifier, assigned at ingestion and immutable afterwards.
	ID string `json:"id"`
	// TeamID identifies the team responsible for this goal.
	TeamID string `json:"team_id"`
	// Description is the free-text statement of the objective.
	Description string `json:"description"`
	// SuccessCriteria lists the conditions that define completion, in order.
	SuccessCriteria []string `json:"success_criteria,omitempty"`
	// Context carries optional background supplied with the goal.
	Context string `json:"context,omitempty"`
	// Priority indicates how urgently the goal should be handled.
	Priority Priority `json:"priority"`
	// Status is the current state of the goal.
	Status GoalStatus `json:"status"`
	// CreatedBy identifies who submitted the goal.
	CreatedBy string `json:"created_by,omitempty"`
	// CreatedAt is when the goal was ingested.
	CreatedAt time.Time `json:"created_at"`
	// Metadata holds arbitrary key/value annotations from the source.
	Metadata map[string]string `json:"metadata,omitempty"`
}
