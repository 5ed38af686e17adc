package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulcedrick/agentos/pkg/models"
)

const yamlGoal = `team: team-a
description: ship the quarterly report
success_criteria:
  - report delivered
priority: high
created_by: alice
`

const jsonGoal = `{
  "team": "team-b",
  "description": "clean up stale branches",
  "priority": "low"
}`

func setupWatcher(t *testing.T) (*Watcher, *SQLiteSource, string) {
	t.Helper()
	source := setupTestStore(t)
	dir := filepath.Join(t.TempDir(), "goals")
	w, err := NewWatcher(dir, source)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	return w, source, dir
}

func dropFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestScanIngestsAndArchives(t *testing.T) {
	w, source, dir := setupWatcher(t)
	ctx := context.Background()

	dropFile(t, dir, "report.yaml", yamlGoal)
	dropFile(t, dir, "cleanup.json", jsonGoal)
	dropFile(t, dir, "notes.txt", "not a goal")

	n, err := w.Scan(ctx)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if n != 2 {
		t.Fatalf("Scan ingested %d files, want 2", n)
	}

	goals, err := source.PollGoals(ctx, "")
	if err != nil {
		t.Fatalf("PollGoals: %v", err)
	}
	if len(goals) != 2 {
		t.Fatalf("PollGoals returned %d goals, want 2", len(goals))
	}

	byTeam := map[string]*models.Goal{}
	for _, g := range goals {
		byTeam[g.TeamID] = g
	}

	yg := byTeam["team-a"]
	if yg == nil {
		t.Fatal("yaml goal missing")
	}
	if yg.Description != "ship the quarterly report" {
		t.Errorf("Description = %q", yg.Description)
	}
	if yg.Priority != models.PriorityHigh {
		t.Errorf("Priority = %q", yg.Priority)
	}
	if yg.CreatedBy != "alice" {
		t.Errorf("CreatedBy = %q", yg.CreatedBy)
	}
	if yg.ID == "" {
		t.Error("goal id not assigned")
	}

	jg := byTeam["team-b"]
	if jg == nil {
		t.Fatal("json goal missing")
	}
	if jg.Priority != models.PriorityLow {
		t.Errorf("json goal Priority = %q", jg.Priority)
	}
	if jg.CreatedBy != "unknown" {
		t.Errorf("json goal CreatedBy = %q", jg.CreatedBy)
	}

	// Ingested files moved to the archive; the unrelated file stays.
	for _, name := range []string{"report.yaml", "cleanup.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Errorf("%s not archived", name)
		}
		if _, err := os.Stat(filepath.Join(dir, "archive", name)); err != nil {
			t.Errorf("%s missing from archive: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "notes.txt")); err != nil {
		t.Errorf("unrelated file touched: %v", err)
	}
}

func TestScanSkipsInvalidFiles(t *testing.T) {
	w, source, dir := setupWatcher(t)
	ctx := context.Background()

	dropFile(t, dir, "empty.yaml", "context: no description here\n")
	dropFile(t, dir, "badprio.yaml", "description: x\npriority: asap\n")
	dropFile(t, dir, "ok.yaml", yamlGoal)

	n, err := w.Scan(ctx)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if n != 1 {
		t.Errorf("Scan ingested %d files, want 1", n)
	}

	goals, err := source.PollGoals(ctx, "")
	if err != nil {
		t.Fatalf("PollGoals: %v", err)
	}
	if len(goals) != 1 {
		t.Errorf("PollGoals returned %d goals, want 1", len(goals))
	}

	// Invalid files stay in place for the operator to fix.
	if _, err := os.Stat(filepath.Join(dir, "empty.yaml")); err != nil {
		t.Errorf("invalid file removed: %v", err)
	}
}

func TestDecodeGoalFile_Yaml(t *testing.T) {
	dir := t.TempDir()
	path := dropFile(t, dir, "g.yaml", yamlGoal)

	goal, err := decodeGoalFile(path)
	if err != nil {
		t.Fatalf("decodeGoalFile: %v", err)
	}
	if goal.Status != models.GoalStatusPending {
		t.Errorf("Status = %q, want pending", goal.Status)
	}
	if len(goal.SuccessCriteria) != 1 {
		t.Errorf("SuccessCriteria = %v", goal.SuccessCriteria)
	}
}
