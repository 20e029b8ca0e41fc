package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"spendtrack/internal/core"
	"spendtrack/internal/store"
)

func newStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, dir
}

func record(ts time.Time, category, description string, cents int64) core.Record {
	return core.Record{Time: ts, Category: category, Description: description, Amount: core.Money{Cents: cents}}
}

func TestAppendLoad(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	now := time.Date(2024, 3, 10, 14, 30, 5, 0, time.UTC)

	if err := s.Append(ctx, "alice", record(now, "Food", "lunch", 1250)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Append(ctx, "alice", record(now.Add(time.Hour), "Transport", "bus", 300)); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := s.Load(ctx, "alice")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("loaded %d records, want 2", len(got))
	}
	last := got[1]
	if last.Category != "Transport" || last.Description != "bus" || last.Amount.Cents != 300 {
		t.Errorf("last record = %+v", last)
	}
	if !last.Time.Equal(now.Add(time.Hour).Truncate(time.Second)) {
		t.Errorf("timestamp = %v, want %v", last.Time, now.Add(time.Hour))
	}
}

func TestLoadMissingLedger(t *testing.T) {
	s, _ := newStore(t)
	got, err := s.Load(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("missing ledger should read empty, got %d records", len(got))
	}
}

func TestLoadCoercesMalformedRows(t *testing.T) {
	s, dir := newStore(t)
	ledger := "Date,Category,Description,Amount\n" +
		"2024-03-10 10:00:00,Food,ok,12.50\n" +
		"2024-03-11 10:00:00,Food,bad amount,oops\n" +
		"not a date,Food,bad date,3.00\n" +
		"short,row\n"
	if err := os.WriteFile(filepath.Join(dir, "expenses_alice.csv"), []byte(ledger), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := s.Load(context.Background(), "alice")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("loaded %d records, want 3", len(got))
	}
	if got[0].Amount.Cents != 1250 {
		t.Errorf("good row amount = %d", got[0].Amount.Cents)
	}
	if got[1].Amount.Cents != 0 {
		t.Errorf("malformed amount should coerce to 0, got %d", got[1].Amount.Cents)
	}
	if !got[2].Time.IsZero() || got[2].Amount.Cents != 300 {
		t.Errorf("bad date row = %+v", got[2])
	}
}

func TestClearKeepsHeaderAndBudgets(t *testing.T) {
	s, dir := newStore(t)
	ctx := context.Background()

	if err := s.Append(ctx, "alice", record(time.Now(), "Food", "x", 100)); err != nil {
		t.Fatal(err)
	}
	if err := s.SetBudget(ctx, "alice", "Food", core.Money{Cents: 10000}); err != nil {
		t.Fatal(err)
	}

	if err := s.Clear(ctx, "alice"); err != nil {
		t.Fatalf("clear: %v", err)
	}

	got, err := s.Load(ctx, "alice")
	if err != nil {
		t.Fatalf("load after clear: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("ledger not empty after clear: %d records", len(got))
	}

	data, err := os.ReadFile(filepath.Join(dir, "expenses_alice.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "Date,Category,Description,Amount\n" {
		t.Errorf("cleared ledger content = %q", data)
	}

	budgets, err := s.Budgets(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if budgets["Food"].Cents != 10000 {
		t.Errorf("budgets affected by clear: %+v", budgets)
	}
}

func TestBudgetUpsert(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	if err := s.SetBudget(ctx, "alice", "Food", core.Money{Cents: 10000}); err != nil {
		t.Fatal(err)
	}
	if err := s.SetBudget(ctx, "alice", "Food", core.Money{Cents: 20000}); err != nil {
		t.Fatal(err)
	}
	if err := s.SetBudget(ctx, "alice", "Transport", core.Money{Cents: 5000}); err != nil {
		t.Fatal(err)
	}

	budgets, err := s.Budgets(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(budgets) != 2 {
		t.Fatalf("budget map = %+v", budgets)
	}
	if budgets["Food"].Cents != 20000 {
		t.Errorf("Food limit = %d, want upserted 20000", budgets["Food"].Cents)
	}
}

func TestBudgetsMissingAndMalformed(t *testing.T) {
	s, dir := newStore(t)
	ctx := context.Background()

	budgets, err := s.Budgets(ctx, "alice")
	if err != nil || len(budgets) != 0 {
		t.Fatalf("missing budget file: got %v, %v", budgets, err)
	}

	if err := os.WriteFile(filepath.Join(dir, "budgets_alice.json"), []byte("{broken"), 0644); err != nil {
		t.Fatal(err)
	}
	budgets, err = s.Budgets(ctx, "alice")
	if err != nil || len(budgets) != 0 {
		t.Fatalf("malformed budget file should read empty: got %v, %v", budgets, err)
	}
}

func TestRemove(t *testing.T) {
	s, dir := newStore(t)
	ctx := context.Background()

	if err := s.Append(ctx, "alice", record(time.Now(), "Food", "x", 100)); err != nil {
		t.Fatal(err)
	}
	if err := s.SetBudget(ctx, "alice", "Food", core.Money{Cents: 100}); err != nil {
		t.Fatal(err)
	}

	if err := s.RemoveLedger(ctx, "alice"); err != nil {
		t.Fatalf("remove ledger: %v", err)
	}
	if err := s.RemoveBudgets(ctx, "alice"); err != nil {
		t.Fatalf("remove budgets: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "expenses_alice.csv")); !os.IsNotExist(err) {
		t.Error("ledger file still present")
	}
	if _, err := os.Stat(filepath.Join(dir, "budgets_alice.json")); !os.IsNotExist(err) {
		t.Error("budget file still present")
	}

	// Removing again is not an error
	if err := s.RemoveLedger(ctx, "alice"); err != nil {
		t.Errorf("second remove: %v", err)
	}
}

func TestRejectsPathTraversal(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	for _, user := range []string{"", "../alice", "a/b", "a\\b", ".."} {
		if err := s.Append(ctx, user, record(time.Now(), "Food", "x", 100)); !errors.Is(err, store.ErrInvalidUser) {
			t.Errorf("Append(%q) = %v, want ErrInvalidUser", user, err)
		}
		if _, err := s.Load(ctx, user); !errors.Is(err, store.ErrInvalidUser) {
			t.Errorf("Load(%q) = %v, want ErrInvalidUser", user, err)
		}
	}
}
