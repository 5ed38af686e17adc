package route

import (
	"testing"

	"github.com/paulcedrick/agentos/pkg/models"
)

func testRouter() *Router {
	teams := []*models.Team{
		{ID: "team-a", Members: []string{"w1", "w2", "w3"}},
		{ID: "team-empty", Members: []string{"w4"}},
	}
	workers := []*models.WorkerDescriptor{
		{ID: "w1", Capabilities: []string{"research", "writing"}, Active: true},
		{ID: "w2", Capabilities: []string{"code"}, Active: true},
		{ID: "w3", Capabilities: []string{"code", "review"}, Active: false},
		{ID: "w4", Capabilities: []string{"research"}, Active: false},
	}
	return NewRouter(teams, workers)
}

func TestFindWorkerCapabilityMatch(t *testing.T) {
	r := testRouter()
	task := &models.Task{RequiredCapabilities: []string{"research"}}

	worker := r.FindWorker(task, "team-a")
	if worker == nil || worker.ID != "w1" {
		t.Fatalf("expected w1, got %+v", worker)
	}
}

func TestFindWorkerRosterOrderTieBreak(t *testing.T) {
	r := testRouter()
	// No requirements: everyone qualifies; first in roster order wins.
	worker := r.FindWorker(&models.Task{}, "team-a")
	if worker == nil || worker.ID != "w1" {
		t.Fatalf("expected w1 by roster order, got %+v", worker)
	}
}

func TestFindWorkerSkipsInactive(t *testing.T) {
	r := testRouter()
	task := &models.Task{RequiredCapabilities: []string{"review"}}

	// Only w3 has "review" but it is inactive; fallback picks w1.
	worker := r.FindWorker(task, "team-a")
	if worker == nil || worker.ID != "w1" {
		t.Fatalf("expected fallback to w1, got %+v", worker)
	}
}

func TestFindWorkerEmptyActiveRoster(t *testing.T) {
	r := testRouter()
	if worker := r.FindWorker(&models.Task{}, "team-empty"); worker != nil {
		t.Fatalf("expected nil for empty active roster, got %+v", worker)
	}
}

func TestFindWorkerUnknownTeam(t *testing.T) {
	r := testRouter()
	if worker := r.FindWorker(&models.Task{}, "nope"); worker != nil {
		t.Fatalf("expected nil for unknown team, got %+v", worker)
	}
}

func TestStrictFallbackLeavesUnassigned(t *testing.T) {
	r := testRouter()
	r.SetFallbackPolicy(StrictFallback)

	task := &models.Task{RequiredCapabilities: []string{"review"}}
	if worker := r.FindWorker(task, "team-a"); worker != nil {
		t.Fatalf("strict policy must not assign, got %+v", worker)
	}

	// Exact matches still route under the strict policy.
	task = &models.Task{RequiredCapabilities: []string{"code"}}
	worker := r.FindWorker(task, "team-a")
	if worker == nil || worker.ID != "w2" {
		t.Fatalf("expected w2, got %+v", worker)
	}
}
