package models

// WorkerDescriptor describes an agent that can be assigned tasks.
type WorkerDescriptor struct {
	// ID is the unique identifier for this worker.
	ID string `json:"id" yaml:"id"`
	// Name is the display name.
	Name string `json:"name" yaml:"name"`
	// Capabilities lists the skills this worker possesses.
	Capabilities []string `json:"capabilities" yaml:"capabilities"`
	// Teams lists the ids of teams this worker belongs to.
	Teams []string `json:"teams" yaml:"teams"`
	// Active indicates whether the worker may receive tasks.
	Active bool `json:"active" yaml:"active"`
	// MaxParallelTasks is an advisory hint only; the scheduler runs one
	// task at a time per goal and does not enforce it.
	MaxParallelTasks int `json:"max_parallel_tasks,omitempty" yaml:"max_parallel_tasks,omitempty"`
}

// CanHandle returns true if the worker is active and its capability set
// is a superset of the required capabilities.
func (w *WorkerDescriptor) CanHandle(required []string) bool {
	if !w.Active {
		return false
	}
	have := make(map[string]bool, len(w.Capabilities))
	for _, c := range w.Capabilities {
		have[c] = true
	}
	for _, r := range required {
		if !have[r] {
			return false
		}
	}
	return true
}

// MemberOf returns true if the worker belongs to the given team.
func (w *WorkerDescriptor) MemberOf(teamID string) bool {
	for _, t := range w.Teams {
		if t == teamID {
			return true
		}
	}
	return false
}

// Team groups workers and carries the storage-location token used by the
// goal source. The token is opaque to the core.
type Team struct {
	// ID is the unique identifier for this team.
	ID string `json:"id" yaml:"id"`
	// Name is the display name.
	Name string `json:"name" yaml:"name"`
	// Members lists worker ids in roster order. Order matters: the
	// capability router breaks ties by roster position.
	Members []string `json:"members" yaml:"members"`
	// StorageRef is the goal-source storage token for this team.
	StorageRef string `json:"storage_ref,omitempty" yaml:"storage_ref,omitempty"`
}
