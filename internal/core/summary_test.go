package core

import (
	"testing"
	"time"
)

func rec(ts string, category string, cents int64) Record {
	t, err := time.Parse(TimeLayout, ts)
	if err != nil {
		panic(err)
	}
	return Record{Time: t, Category: category, Amount: Money{Cents: cents}}
}

func TestTotalAndCount(t *testing.T) {
	total, count := TotalAndCount(nil)
	if total.Cents != 0 || count != 0 {
		t.Fatalf("empty input: got (%d, %d), want (0, 0)", total.Cents, count)
	}

	records := []Record{
		rec("2024-03-01 10:00:00", "Food", 1000),
		rec("2024-03-02 10:00:00", "Food", 2050),
		rec("2024-03-03 10:00:00", "Transport", 500),
	}
	total, count = TotalAndCount(records)
	if total.Cents != 3550 || count != 3 {
		t.Fatalf("got (%d, %d), want (3550, 3)", total.Cents, count)
	}
}

func TestByCategory(t *testing.T) {
	records := []Record{
		rec("2024-03-01 10:00:00", "Food", 1000),
		rec("2024-03-02 10:00:00", "Food", 500),
		rec("2024-03-03 10:00:00", "Transport", 700),
	}
	sums := ByCategory(records)
	if len(sums) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(sums))
	}
	if sums["Food"].Cents != 1500 {
		t.Errorf("Food = %d, want 1500", sums["Food"].Cents)
	}
	if sums["Transport"].Cents != 700 {
		t.Errorf("Transport = %d, want 700", sums["Transport"].Cents)
	}
}

func TestCategoriesDescending(t *testing.T) {
	sums := map[string]Money{
		"Food":      {Cents: 1500},
		"Transport": {Cents: 700},
		"Bills":     {Cents: 3000},
	}
	got := CategoriesDescending(sums)
	want := []string{"Bills", "Food", "Transport"}
	for i, name := range want {
		if got[i].Name != name {
			t.Fatalf("position %d: got %s, want %s", i, got[i].Name, name)
		}
	}
}

func TestByMonthAndTrend(t *testing.T) {
	records := []Record{
		rec("2024-01-15 10:00:00", "Food", 100),
		rec("2024-01-20 10:00:00", "Food", 200),
		rec("2024-02-01 10:00:00", "Food", 300),
		rec("2024-03-01 10:00:00", "Food", 400),
	}
	months := MonthsAscending(ByMonth(records))
	if len(months) != 3 {
		t.Fatalf("expected 3 months, got %d", len(months))
	}
	if months[0].Month != "2024-01" || months[0].Amount.Cents != 300 {
		t.Errorf("first month = %+v, want 2024-01/300", months[0])
	}

	last2 := LastMonths(months, 2)
	if len(last2) != 2 || last2[0].Month != "2024-02" || last2[1].Month != "2024-03" {
		t.Errorf("LastMonths(2) = %+v", last2)
	}
	if got := LastMonths(months, 10); len(got) != 3 {
		t.Errorf("LastMonths(10) should keep all 3, got %d", len(got))
	}
}

func TestTopN(t *testing.T) {
	records := []Record{
		rec("2024-03-01 10:00:00", "A", 100),
		rec("2024-03-02 10:00:00", "B", 300),
		rec("2024-03-03 10:00:00", "C", 100),
		rec("2024-03-04 10:00:00", "D", 200),
	}
	top := TopN(records, 3)
	if len(top) != 3 {
		t.Fatalf("expected 3 records, got %d", len(top))
	}
	if top[0].Category != "B" || top[1].Category != "D" {
		t.Errorf("order: got %s, %s; want B, D", top[0].Category, top[1].Category)
	}
	// Tie between A and C resolves to the earlier ledger entry
	if top[2].Category != "A" {
		t.Errorf("tie break: got %s, want A", top[2].Category)
	}

	if got := TopN(records, 0); got != nil {
		t.Errorf("TopN(0) = %v, want nil", got)
	}
}
