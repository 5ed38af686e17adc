package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/paulcedrick/agentos/pkg/models"
)

// goalFile is the on-disk shape of a dropped goal. YAML and JSON are
// both accepted; the file extension decides the decoder.
type goalFile struct {
	TeamID          string            `yaml:"team" json:"team"`
	Description     string            `yaml:"description" json:"description"`
	SuccessCriteria []string          `yaml:"success_criteria" json:"success_criteria"`
	Context         string            `yaml:"context" json:"context"`
	Priority        string            `yaml:"priority" json:"priority"`
	CreatedBy       string            `yaml:"created_by" json:"created_by"`
	Metadata        map[string]string `yaml:"metadata" json:"metadata"`
}

// Watcher ingests goal files dropped into a directory. Ingested files
// move to an archive subdirectory so a restart never re-ingests them.
type Watcher struct {
	dir    string
	source *SQLiteSource

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewWatcher creates a watcher over dir, creating dir and its archive
// subdirectory if needed. Call Start to begin watching.
func NewWatcher(dir string, source *SQLiteSource) (*Watcher, error) {
	for _, d := range []string{dir, filepath.Join(dir, "archive")} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return nil, fmt.Errorf("create drop directory: %w", err)
		}
	}
	return &Watcher{
		dir:    dir,
		source: source,
		done:   make(chan struct{}),
	}, nil
}

// Scan ingests every goal file already present in the drop directory.
// Run it at startup and rely on filesystem events afterwards.
func (w *Watcher) Scan(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return 0, fmt.Errorf("read drop directory: %w", err)
	}

	ingested := 0
	for _, entry := range entries {
		if entry.IsDir() || !isGoalFile(entry.Name()) {
			continue
		}
		if err := w.ingest(ctx, filepath.Join(w.dir, entry.Name())); err != nil {
			log.Printf("[watcher] ingest %s failed: %v", entry.Name(), err)
			continue
		}
		ingested++
	}
	return ingested, nil
}

// Start begins watching for new goal files. On platforms or filesystems
// without event support the caller still gets ingestion through Scan.
func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(w.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.watcher = watcher

	go w.loop(ctx)
	return nil
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !isGoalFile(filepath.Base(event.Name)) {
				continue
			}
			// Editors and scp may fire Write before the file is whole;
			// a short settle keeps partial reads rare.
			time.Sleep(50 * time.Millisecond)
			if err := w.ingest(ctx, event.Name); err != nil {
				log.Printf("[watcher] ingest %s failed: %v", filepath.Base(event.Name), err)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[watcher] error: %v", err)
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() {
	close(w.done)
	if w.watcher != nil {
		w.watcher.Close()
	}
}

// ingest decodes one dropped file, saves it as a pending goal, and
// archives the file.
func (w *Watcher) ingest(ctx context.Context, path string) error {
	goal, err := decodeGoalFile(path)
	if err != nil {
		return err
	}

	if err := w.source.SaveGoal(ctx, goal); err != nil {
		return err
	}
	log.Printf("[watcher] ingested goal %s from %s (team=%q)", goal.ID, filepath.Base(path), goal.TeamID)

	archived := filepath.Join(w.dir, "archive", filepath.Base(path))
	if err := os.Rename(path, archived); err != nil {
		return fmt.Errorf("archive %s: %w", filepath.Base(path), err)
	}
	return nil
}

// decodeGoalFile reads a dropped file into a pending goal with a fresh
// id.
func decodeGoalFile(path string) (*models.Goal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read goal file: %w", err)
	}

	var gf goalFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &gf)
	default:
		err = yaml.Unmarshal(data, &gf)
	}
	if err != nil {
		return nil, fmt.Errorf("decode goal file: %w", err)
	}

	if strings.TrimSpace(gf.Description) == "" {
		return nil, fmt.Errorf("goal file %s has no description", filepath.Base(path))
	}

	priority := models.Priority(gf.Priority)
	if gf.Priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return nil, fmt.Errorf("goal file %s has invalid priority %q", filepath.Base(path), gf.Priority)
	}

	createdBy := gf.CreatedBy
	if createdBy == "" {
		createdBy = "unknown"
	}

	return &models.Goal{
		ID:              uuid.New().String(),
		TeamID:          gf.TeamID,
		Description:     gf.Description,
		SuccessCriteria: gf.SuccessCriteria,
		Context:         gf.Context,
		Priority:        priority,
		Status:          models.GoalStatusPending,
		CreatedBy:       createdBy,
		CreatedAt:       time.Now(),
		Metadata:        gf.Metadata,
	}, nil
}

func isGoalFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}
