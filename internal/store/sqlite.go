package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/paulcedrick/agentos/pkg/models"
)

// SQLiteSource is a GoalSource backed by a local SQLite database. Claims
// are enforced by a primary-key insert, so exclusivity holds across
// processes sharing the same file.
type SQLiteSource struct {
	conn *sql.DB
	path string
	mu   sync.RWMutex
}

// DefaultStorePath returns the default database location under the
// XDG data directory.
func DefaultStorePath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "agentos", "agentos.db")
}

// Open opens (creating if needed) the SQLite store at the given path.
// WAL mode is enabled for concurrent reads.
func Open(path string) (*SQLiteSource, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &SQLiteSource{conn: conn, path: path}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

// Path returns the path to the database file.
func (s *SQLiteSource) Path() string {
	return s.path
}

func (s *SQLiteSource) migrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var current int
	row := s.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err := row.Scan(&current); err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migrationV1Goals},
		{2, migrationV2Claims},
		{3, migrationV3Events},
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		tx, err := s.conn.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}

		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration v%d: %w", m.version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration v%d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration v%d: %w", m.version, err)
		}
	}
	return nil
}

const migrationV1Goals = `
CREATE TABLE IF NOT EXISTS goals (
	id TEXT PRIMARY KEY,
	team_id TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL,
	success_criteria TEXT,
	context TEXT,
	priority TEXT NOT NULL DEFAULT 'medium',
	status TEXT NOT NULL DEFAULT 'pending',
	created_by TEXT,
	created_at DATETIME NOT NULL,
	metadata TEXT
);

CREATE INDEX IF NOT EXISTS idx_goals_status ON goals(status);
CREATE INDEX IF NOT EXISTS idx_goals_team_id ON goals(team_id);
`

const migrationV2Claims = `
CREATE TABLE IF NOT EXISTS claims (
	id TEXT PRIMARY KEY,
	worker_id TEXT NOT NULL,
	claimed_at DATETIME NOT NULL
);
`

const migrationV3Events = `
CREATE TABLE IF NOT EXISTS events (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	entity TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	team_id TEXT,
	kind TEXT NOT NULL,
	status TEXT,
	message TEXT,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_entity_id ON events(entity_id);
CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind);
`

// SaveGoal inserts a new goal in pending state. Used by the drop-dir
// watcher and the submit command.
func (s *SQLiteSource) SaveGoal(ctx context.Context, goal *models.Goal) error {
	criteria, err := json.Marshal(goal.SuccessCriteria)
	if err != nil {
		return fmt.Errorf("encode success criteria: %w", err)
	}
	metadata, err := json.Marshal(goal.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO goals (id, team_id, description, success_criteria, context, priority, status, created_by, created_at, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, goal.ID, goal.TeamID, goal.Description, string(criteria), goal.Context,
		string(goal.Priority), string(goal.Status), goal.CreatedBy,
		formatTime(goal.CreatedAt), string(metadata))
	if err != nil {
		return fmt.Errorf("insert goal %s: %w", goal.ID, err)
	}
	return nil
}

// PollGoals returns pending goals, oldest first. An empty teamID matches
// every team.
func (s *SQLiteSource) PollGoals(ctx context.Context, teamID string) ([]*models.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, team_id, description, success_criteria, context, priority, status, created_by, created_at, metadata
		FROM goals WHERE status = 'pending'
	`
	args := []any{}
	if teamID != "" {
		query += " AND team_id = ?"
		args = append(args, teamID)
	}
	query += " ORDER BY created_at ASC"

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("poll goals: %w", err)
	}
	defer rows.Close()

	var goals []*models.Goal
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, goal)
	}
	return goals, rows.Err()
}

func scanGoal(rows *sql.Rows) (*models.Goal, error) {
	var (
		goal       models.Goal
		criteria   sql.NullString
		background sql.NullString
		priority   string
		status     string
		createdBy  sql.NullString
		createdAt  string
		metadata   sql.NullString
	)
	err := rows.Scan(&goal.ID, &goal.TeamID, &goal.Description, &criteria,
		&background, &priority, &status, &createdBy, &createdAt, &metadata)
	if err != nil {
		return nil, fmt.Errorf("scan goal: %w", err)
	}

	goal.Context = background.String
	goal.Priority = models.Priority(priority)
	goal.Status = models.GoalStatus(status)
	goal.CreatedBy = createdBy.String
	if t, err := parseTime(createdAt); err == nil {
		goal.CreatedAt = t
	}
	if criteria.Valid && criteria.String != "" {
		if err := json.Unmarshal([]byte(criteria.String), &goal.SuccessCriteria); err != nil {
			return nil, fmt.Errorf("decode success criteria for %s: %w", goal.ID, err)
		}
	}
	if metadata.Valid && metadata.String != "" && metadata.String != "null" {
		if err := json.Unmarshal([]byte(metadata.String), &goal.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata for %s: %w", goal.ID, err)
		}
	}
	return &goal, nil
}

// Claim exclusively assigns the id to the worker. The primary key on
// claims makes the first insert win; later callers see zero rows
// affected and get false.
func (s *SQLiteSource) Claim(ctx context.Context, id, workerID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.conn.ExecContext(ctx, `
		INSERT OR IGNORE INTO claims (id, worker_id, claimed_at) VALUES (?, ?, ?)
	`, id, workerID, formatTime(time.Now()))
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim %s rows affected: %w", id, err)
	}
	return n > 0, nil
}

// Report records a status event and, for goals, also updates the goal
// row so polling reflects the new state.
func (s *SQLiteSource) Report(ctx context.Context, id, status, message string, opts ReportOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO events (entity, entity_id, team_id, kind, status, message, created_at)
		VALUES (?, ?, ?, 'status', ?, ?, ?)
	`, string(opts.Entity), id, opts.TeamID, status, message, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("record status for %s: %w", id, err)
	}

	if opts.Entity == EntityGoal {
		if _, err := s.conn.ExecContext(ctx, "UPDATE goals SET status = ? WHERE id = ?", status, id); err != nil {
			return fmt.Errorf("update goal %s status: %w", id, err)
		}
	}
	return nil
}

// RequestClarification records the blocking questions as an event.
func (s *SQLiteSource) RequestClarification(ctx context.Context, goalID, question string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO events (entity, entity_id, kind, message, created_at)
		VALUES ('goal', ?, 'clarification', ?, ?)
	`, goalID, question, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("record clarification for %s: %w", goalID, err)
	}
	return nil
}

// Notify records a free-form message event.
func (s *SQLiteSource) Notify(ctx context.Context, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO events (entity, entity_id, kind, message, created_at)
		VALUES ('', '', 'notification', ?, ?)
	`, message, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("record notification: %w", err)
	}
	return nil
}

// GoalCounts returns the number of goals per status, optionally scoped
// to a team.
func (s *SQLiteSource) GoalCounts(ctx context.Context, teamID string) (map[models.GoalStatus]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT status, COUNT(*) FROM goals"
	args := []any{}
	if teamID != "" {
		query += " WHERE team_id = ?"
		args = append(args, teamID)
	}
	query += " GROUP BY status"

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("count goals: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.GoalStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan goal count: %w", err)
		}
		counts[models.GoalStatus(status)] = n
	}
	return counts, rows.Err()
}

// Event is a recorded status change, clarification, or notification.
type Event struct {
	Seq      int64
	Entity   Entity
	EntityID string
	Kind     string
	Status   string
	Message  string
	At       time.Time
}

// RecentEvents returns the newest events, most recent first.
func (s *SQLiteSource) RecentEvents(ctx context.Context, limit int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.conn.QueryContext(ctx, `
		SELECT seq, entity, entity_id, kind, COALESCE(status, ''), COALESCE(message, ''), created_at
		FROM events ORDER BY seq DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			ev        Event
			entity    string
			createdAt string
		)
		if err := rows.Scan(&ev.Seq, &entity, &ev.EntityID, &ev.Kind, &ev.Status, &ev.Message, &createdAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Entity = Entity(entity)
		if t, err := parseTime(createdAt); err == nil {
			ev.At = t
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// formatTime formats a time.Time for SQLite storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseTime parses a time string from SQLite.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
