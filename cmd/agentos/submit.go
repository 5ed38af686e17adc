package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/paulcedrick/agentos/internal/config"
	"github.com/paulcedrick/agentos/internal/store"
	"github.com/paulcedrick/agentos/pkg/models"
)

var (
	submitTeam     string
	submitPriority string
	submitBy       string
	submitCriteria []string
	submitContext  string
)

var submitCmd = &cobra.Command{
	Use:   "submit <description>",
	Short: "Submit a goal directly to the store",
	Long: `Submit a goal without going through the drop directory.

The goal is stored in pending state and picked up by the next
processing cycle.

Examples:
  agentos submit "ship the Q1 report" --team reporting
  agentos submit "clean up stale branches" --priority low \
    --criteria "no branch older than 90 days"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().StringVar(&submitTeam, "team", "", "Team the goal belongs to")
	submitCmd.Flags().StringVar(&submitPriority, "priority", "medium", "Priority (low, medium, high, urgent)")
	submitCmd.Flags().StringVar(&submitBy, "by", "", "Who is submitting the goal")
	submitCmd.Flags().StringArrayVar(&submitCriteria, "criteria", nil, "Success criterion (repeatable)")
	submitCmd.Flags().StringVar(&submitContext, "context", "", "Additional context")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	priority := models.Priority(submitPriority)
	if !priority.Valid() {
		return fmt.Errorf("invalid priority %q", submitPriority)
	}

	createdBy := submitBy
	if createdBy == "" {
		createdBy = "unknown"
	}

	source, err := store.Open(cfg.StorePath(store.DefaultStorePath()))
	if err != nil {
		return err
	}
	defer source.Close()

	goal := &models.Goal{
		ID:              uuid.New().String(),
		TeamID:          submitTeam,
		Description:     strings.Join(args, " "),
		SuccessCriteria: submitCriteria,
		Context:         submitContext,
		Priority:        priority,
		Status:          models.GoalStatusPending,
		CreatedBy:       createdBy,
		CreatedAt:       time.Now(),
	}

	if err := source.SaveGoal(context.Background(), goal); err != nil {
		return err
	}

	fmt.Printf("Submitted goal %s\n", goal.ID)
	return nil
}
