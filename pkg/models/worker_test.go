package models

import "testing"

func TestWorkerCanHandle(t *testing.T) {
	worker := &WorkerDescriptor{
		ID:           "w1",
		Capabilities: []string{"research", "writing"},
		Active:       true,
	}

	tests := []struct {
		name     string
		required []string
		want     bool
	}{
		{"subset", []string{"research"}, true},
		{"exact", []string{"research", "writing"}, true},
		{"empty requirements", nil, true},
		{"missing capability", []string{"code"}, false},
		{"partial overlap", []string{"research", "code"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := worker.CanHandle(tt.required); got != tt.want {
				t.Errorf("CanHandle(%v) = %v, want %v", tt.required, got, tt.want)
			}
		})
	}
}

func TestWorkerCanHandleInactive(t *testing.T) {
	worker := &WorkerDescriptor{
		ID:           "w1",
		Capabilities: []string{"research"},
		Active:       false,
	}
	if worker.CanHandle(nil) {
		t.Error("inactive worker must not handle any task")
	}
}

func TestWorkerMemberOf(t *testing.T) {
	worker := &WorkerDescriptor{ID: "w1", Teams: []string{"alpha", "beta"}}
	if !worker.MemberOf("alpha") {
		t.Error("expected membership in alpha")
	}
	if worker.MemberOf("gamma") {
		t.Error("did not expect membership in gamma")
	}
}
