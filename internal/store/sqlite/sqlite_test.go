package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"spendtrack/internal/core"
)

func newRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestAppendLoadClear(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	now := time.Date(2024, 3, 10, 14, 30, 5, 0, time.UTC)

	recs := []core.Record{
		{Time: now, Category: "Food", Description: "lunch", Amount: core.Money{Cents: 1250}},
		{Time: now.Add(time.Hour), Category: "Transport", Description: "bus", Amount: core.Money{Cents: 300}},
	}
	for _, rec := range recs {
		if err := repo.Append(ctx, "alice", rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	// Another user's ledger stays separate
	if err := repo.Append(ctx, "bob", recs[0]); err != nil {
		t.Fatalf("append bob: %v", err)
	}

	got, err := repo.Load(ctx, "alice")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("loaded %d records, want 2", len(got))
	}
	if got[1].Category != "Transport" || got[1].Amount.Cents != 300 {
		t.Errorf("second record = %+v", got[1])
	}
	if !got[0].Time.Equal(now) {
		t.Errorf("timestamp = %v, want %v", got[0].Time, now)
	}

	if err := repo.Clear(ctx, "alice"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, err = repo.Load(ctx, "alice")
	if err != nil {
		t.Fatalf("load after clear: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("alice ledger not empty after clear")
	}
	if bobs, _ := repo.Load(ctx, "bob"); len(bobs) != 1 {
		t.Fatalf("bob ledger affected by alice clear")
	}
}

func TestBudgets(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	if b, err := repo.Budgets(ctx, "alice"); err != nil || len(b) != 0 {
		t.Fatalf("budgets of unknown user: %v, %v", b, err)
	}

	if err := repo.SetBudget(ctx, "alice", "Food", core.Money{Cents: 10000}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := repo.SetBudget(ctx, "alice", "Food", core.Money{Cents: 20000}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	budgets, err := repo.Budgets(ctx, "alice")
	if err != nil {
		t.Fatalf("budgets: %v", err)
	}
	if budgets["Food"].Cents != 20000 {
		t.Errorf("Food limit = %d, want 20000", budgets["Food"].Cents)
	}

	if err := repo.RemoveBudgets(ctx, "alice"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if budgets, _ := repo.Budgets(ctx, "alice"); len(budgets) != 0 {
		t.Errorf("budgets remain after remove: %+v", budgets)
	}
}
