package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/paulcedrick/agentos/internal/config"
	"github.com/paulcedrick/agentos/internal/costs"
	"github.com/paulcedrick/agentos/internal/store"
	"github.com/paulcedrick/agentos/pkg/models"
)

var (
	statusTeam   string
	statusEvents int
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show goal counts, recent activity, and spend",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusTeam, "team", "", "Only show goals for this team")
	statusCmd.Flags().IntVar(&statusEvents, "events", 10, "Number of recent events to show")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	path := cfg.StorePath(store.DefaultStorePath())
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Println("No store yet. Run 'agentos run' or 'agentos submit' first.")
		return nil
	}

	source, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer source.Close()

	ctx := context.Background()

	counts, err := source.GoalCounts(ctx, statusTeam)
	if err != nil {
		return fmt.Errorf("count goals: %w", err)
	}
	displayGoalCounts(counts)

	events, err := source.RecentEvents(ctx, statusEvents)
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}
	displayEvents(events)

	ledger, err := costs.OpenLedger(path)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer ledger.Close()

	totals, err := ledger.Totals()
	if err != nil {
		return fmt.Errorf("read spend totals: %w", err)
	}
	displaySpend(totals)

	return nil
}

func displayGoalCounts(counts map[models.GoalStatus]int) {
	fmt.Println("Goals:")
	if len(counts) == 0 {
		fmt.Println("  none")
		return
	}

	ordered := []models.GoalStatus{
		models.GoalStatusPending,
		models.GoalStatusInProgress,
		models.GoalStatusBlocked,
		models.GoalStatusCompleted,
		models.GoalStatusFailed,
	}
	for _, status := range ordered {
		n, ok := counts[status]
		if !ok {
			continue
		}
		fmt.Printf("  %s: %d\n", colorStatus(string(status)), n)
	}
}

func displayEvents(events []store.Event) {
	fmt.Println()
	fmt.Println("Recent activity:")
	if len(events) == 0 {
		fmt.Println("  none")
		return
	}

	for _, ev := range events {
		when := ev.At.Local().Format(time.Stamp)
		switch ev.Kind {
		case "status":
			fmt.Printf("  %s  %s %s -> %s  %s\n", when, ev.Entity, ev.EntityID, colorStatus(ev.Status), ev.Message)
		case "clarification":
			fmt.Printf("  %s  goal %s needs clarification\n", when, ev.EntityID)
		default:
			fmt.Printf("  %s  %s\n", when, ev.Message)
		}
	}
}

func displaySpend(totals []costs.ModelTotal) {
	fmt.Println()
	fmt.Println("Spend:")
	if len(totals) == 0 {
		fmt.Println("  none")
		return
	}

	var grand float64
	for _, t := range totals {
		fmt.Printf("  %s: $%.4f (%d calls, %d in / %d out tokens)\n",
			t.Model, t.Cost, t.Invocations, t.InputTokens, t.OutputTokens)
		grand += t.Cost
	}
	fmt.Printf("  total: $%.4f\n", grand)
}

// colorStatus colors terminal output by outcome.
func colorStatus(status string) string {
	switch status {
	case string(models.GoalStatusCompleted):
		return color.GreenString(status)
	case string(models.GoalStatusFailed):
		return color.RedString(status)
	case string(models.GoalStatusBlocked):
		return color.YellowString(status)
	case string(models.GoalStatusInProgress), string(models.TaskStatusClaimed):
		return color.CyanString(status)
	default:
		return status
	}
}
