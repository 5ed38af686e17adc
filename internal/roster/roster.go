// Package roster loads the teams and workers definition file.
package roster

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/paulcedrick/agentos/pkg/models"
)

// Roster holds the teams and workers known to this process.
type Roster struct {
	Teams   []*models.Team             `yaml:"teams"`
	Workers []*models.WorkerDescriptor `yaml:"workers"`
}

// Load reads and validates a roster file.
func Load(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}

	var r Roster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode roster: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("invalid roster %s: %w", path, err)
	}
	return &r, nil
}

// Validate checks ids are unique and every team member is a known
// worker. A team may be empty; routing then blocks its tasks.
func (r *Roster) Validate() error {
	workers := make(map[string]bool, len(r.Workers))
	for _, w := range r.Workers {
		if w.ID == "" {
			return fmt.Errorf("worker with empty id")
		}
		if workers[w.ID] {
			return fmt.Errorf("duplicate worker id %q", w.ID)
		}
		workers[w.ID] = true
	}

	teams := make(map[string]bool, len(r.Teams))
	for _, t := range r.Teams {
		if t.ID == "" {
			return fmt.Errorf("team with empty id")
		}
		if teams[t.ID] {
			return fmt.Errorf("duplicate team id %q", t.ID)
		}
		teams[t.ID] = true

		for _, member := range t.Members {
			if !workers[member] {
				return fmt.Errorf("team %q lists unknown worker %q", t.ID, member)
			}
		}
	}

	// A worker's team list is a convenience mirror of team membership;
	// entries naming unknown teams are a configuration mistake.
	for _, w := range r.Workers {
		for _, teamID := range w.Teams {
			if !teams[teamID] {
				return fmt.Errorf("worker %q lists unknown team %q", w.ID, teamID)
			}
		}
	}
	return nil
}

// Team returns the team with the given id, or nil.
func (r *Roster) Team(id string) *models.Team {
	for _, t := range r.Teams {
		if t.ID == id {
			return t
		}
	}
	return nil
}
