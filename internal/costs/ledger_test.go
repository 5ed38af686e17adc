package costs

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/paulcedrick/agentos/internal/invoke"
)

var testPricing = invoke.ModelPricing{InputPerMTok: 3.0, OutputPerMTok: 15.0}

func setupLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := OpenLedger(filepath.Join(t.TempDir(), "costs.db"))
	if err != nil {
		t.Fatalf("OpenLedger: %v", err)
	}
	t.Cleanup(func() {
		l.Close()
	})
	return l
}

func TestLedgerRecordAndTotals(t *testing.T) {
	l := setupLedger(t)

	if err := l.Record("execute", "claude-sonnet-4-5", 1_000_000, 100_000, testPricing); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := l.Record("parse", "claude-sonnet-4-5", 500_000, 50_000, testPricing); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := l.Record("execute", "claude-haiku-4-5", 100_000, 10_000, testPricing); err != nil {
		t.Fatalf("Record: %v", err)
	}

	totals, err := l.Totals()
	if err != nil {
		t.Fatalf("Totals: %v", err)
	}
	if len(totals) != 2 {
		t.Fatalf("Totals returned %d models, want 2", len(totals))
	}

	// Most expensive model first.
	top := totals[0]
	if top.Model != "claude-sonnet-4-5" {
		t.Errorf("top model = %q", top.Model)
	}
	if top.Invocations != 2 {
		t.Errorf("Invocations = %d, want 2", top.Invocations)
	}
	if top.InputTokens != 1_500_000 || top.OutputTokens != 150_000 {
		t.Errorf("tokens = %d in / %d out", top.InputTokens, top.OutputTokens)
	}
	// 1.5 MTok * $3 + 0.15 MTok * $15 = $6.75
	if math.Abs(top.Cost-6.75) > 1e-9 {
		t.Errorf("Cost = %f, want 6.75", top.Cost)
	}
}

func TestTally(t *testing.T) {
	var tally Tally

	if err := tally.Record("execute", "m", 1_000_000, 0, testPricing); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := tally.Record("execute", "m", 0, 1_000_000, testPricing); err != nil {
		t.Fatalf("Record: %v", err)
	}

	n, in, out, cost := tally.Summary()
	if n != 2 {
		t.Errorf("invocations = %d, want 2", n)
	}
	if in != 1_000_000 || out != 1_000_000 {
		t.Errorf("tokens = %d in / %d out", in, out)
	}
	if math.Abs(cost-18.0) > 1e-9 {
		t.Errorf("cost = %f, want 18.0", cost)
	}
}
