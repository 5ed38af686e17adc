// Package costs records per-invocation spend so runs can be accounted
// for after the fact.
package costs

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/paulcedrick/agentos/internal/invoke"
)

// Ledger is a CostSink backed by SQLite. It may share the database file
// with the goal store; WAL mode keeps concurrent writers safe.
type Ledger struct {
	conn *sql.DB
	mu   sync.Mutex
}

// OpenLedger opens (creating if needed) a cost ledger at the given path.
func OpenLedger(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	_, err = conn.Exec(`
		CREATE TABLE IF NOT EXISTS invocation_costs (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			stage TEXT NOT NULL,
			model TEXT NOT NULL,
			input_tokens INTEGER NOT NULL,
			output_tokens INTEGER NOT NULL,
			cost REAL NOT NULL,
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_costs_model ON invocation_costs(model);
	`)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create invocation_costs table: %w", err)
	}

	return &Ledger{conn: conn}, nil
}

// Close closes the ledger.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conn.Close()
}

// Record appends one invocation's spend.
func (l *Ledger) Record(stage, model string, inputTokens, outputTokens int64, pricing invoke.ModelPricing) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, err := l.conn.Exec(`
		INSERT INTO invocation_costs (stage, model, input_tokens, output_tokens, cost, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, stage, model, inputTokens, outputTokens,
		pricing.Cost(inputTokens, outputTokens),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("record cost: %w", err)
	}
	return nil
}

// ModelTotal aggregates spend for one model.
type ModelTotal struct {
	Model        string
	Invocations  int
	InputTokens  int64
	OutputTokens int64
	Cost         float64
}

// Totals returns per-model aggregates, most expensive first.
func (l *Ledger) Totals() ([]ModelTotal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows, err := l.conn.Query(`
		SELECT model, COUNT(*), SUM(input_tokens), SUM(output_tokens), SUM(cost)
		FROM invocation_costs GROUP BY model ORDER BY SUM(cost) DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query totals: %w", err)
	}
	defer rows.Close()

	var totals []ModelTotal
	for rows.Next() {
		var t ModelTotal
		if err := rows.Scan(&t.Model, &t.Invocations, &t.InputTokens, &t.OutputTokens, &t.Cost); err != nil {
			return nil, fmt.Errorf("scan total: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}
