package lifecycle

import (
	"errors"
	"testing"

	"github.com/paulcedrick/agentos/pkg/models"
)

func TestCanTransitionTable(t *testing.T) {
	m := NewMachine()

	allowed := []struct {
		from, to models.TaskStatus
	}{
		{models.TaskStatusPending, models.TaskStatusClaimed},
		{models.TaskStatusClaimed, models.TaskStatusInProgress},
		{models.TaskStatusClaimed, models.TaskStatusFailed},
		{models.TaskStatusInProgress, models.TaskStatusBlocked},
		{models.TaskStatusInProgress, models.TaskStatusCompleted},
		{models.TaskStatusInProgress, models.TaskStatusFailed},
		{models.TaskStatusBlocked, models.TaskStatusInProgress},
		{models.TaskStatusBlocked, models.TaskStatusFailed},
		{models.TaskStatusFailed, models.TaskStatusPending},
	}
	for _, tt := range allowed {
		if !m.CanTransition(tt.from, tt.to) {
			t.Errorf("expected %s -> %s to be allowed", tt.from, tt.to)
		}
	}

	// Exhaustively verify everything outside the table is rejected,
	// including self-loops and edges out of the terminal state.
	allowedSet := make(map[[2]models.TaskStatus]bool)
	for _, tt := range allowed {
		allowedSet[[2]models.TaskStatus{tt.from, tt.to}] = true
	}
	statuses := []models.TaskStatus{
		models.TaskStatusPending, models.TaskStatusClaimed,
		models.TaskStatusInProgress, models.TaskStatusBlocked,
		models.TaskStatusCompleted, models.TaskStatusFailed,
	}
	for _, from := range statuses {
		for _, to := range statuses {
			if allowedSet[[2]models.TaskStatus{from, to}] {
				continue
			}
			if m.CanTransition(from, to) {
				t.Errorf("expected %s -> %s to be rejected", from, to)
			}
		}
	}
}

func TestTransitionIllegalEdgeLeavesTaskUntouched(t *testing.T) {
	m := NewMachine()
	task := &models.Task{ID: "t1", Status: models.TaskStatusPending}

	err := m.Transition(task, models.TaskStatusCompleted)
	if err == nil {
		t.Fatal("expected error for pending -> completed")
	}

	var terr *TransitionError
	if !errors.As(err, &terr) {
		t.Fatalf("expected *TransitionError, got %T", err)
	}
	if terr.From != models.TaskStatusPending || terr.To != models.TaskStatusCompleted {
		t.Errorf("unexpected error fields: %+v", terr)
	}

	if task.Status != models.TaskStatusPending {
		t.Errorf("status changed on illegal transition: %s", task.Status)
	}
	if task.ClaimedAt != nil || task.CompletedAt != nil {
		t.Error("timestamps stamped on illegal transition")
	}
}

func TestTransitionStampsClaimedAt(t *testing.T) {
	m := NewMachine()
	task := &models.Task{ID: "t1", Status: models.TaskStatusPending}

	if err := m.Transition(task, models.TaskStatusClaimed); err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if task.Status != models.TaskStatusClaimed {
		t.Errorf("expected claimed, got %s", task.Status)
	}
	if task.ClaimedAt == nil {
		t.Error("expected ClaimedAt to be stamped")
	}
	if task.CompletedAt != nil {
		t.Error("CompletedAt must not be stamped on claim")
	}
}

func TestTransitionStampsCompletedAt(t *testing.T) {
	m := NewMachine()

	for _, terminal := range []models.TaskStatus{models.TaskStatusCompleted, models.TaskStatusFailed} {
		task := &models.Task{ID: "t1", Status: models.TaskStatusInProgress}
		if err := m.Transition(task, terminal); err != nil {
			t.Fatalf("transition to %s failed: %v", terminal, err)
		}
		if task.CompletedAt == nil {
			t.Errorf("expected CompletedAt stamped for %s", terminal)
		}
	}
}

func TestTransitionRetryReentry(t *testing.T) {
	m := NewMachine()
	task := &models.Task{ID: "t1", Status: models.TaskStatusFailed}

	if err := m.Transition(task, models.TaskStatusPending); err != nil {
		t.Fatalf("failed -> pending should be allowed: %v", err)
	}
	if task.Status != models.TaskStatusPending {
		t.Errorf("expected pending, got %s", task.Status)
	}
}

func TestTransitionNilTask(t *testing.T) {
	m := NewMachine()
	if err := m.Transition(nil, models.TaskStatusClaimed); err == nil {
		t.Error("expected error for nil task")
	}
}
