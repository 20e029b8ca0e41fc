package core

import "sort"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string `json:"name"`
	Amount Money  `json:"amount"`
}

// MonthAmount represents an amount aggregated by "YYYY-MM" period.
type MonthAmount struct {
	Month  string `json:"month"`
	Amount Money  `json:"amount"`
}

// TotalAndCount sums amounts over records. Both results are zero on empty
// input.
func TotalAndCount(records []Record) (Money, int) {
	var total int64
	for _, r := range records {
		total += r.Amount.Cents
	}
	return Money{Cents: total}, len(records)
}

// ByCategory sums amounts per category.
func ByCategory(records []Record) map[string]Money {
	sums := make(map[string]Money)
	for _, r := range records {
		sums[r.Category] = Money{Cents: sums[r.Category].Cents + r.Amount.Cents}
	}
	return sums
}

// CategoriesDescending flattens a ByCategory map into a slice sorted by
// amount, largest first. Equal amounts sort by name for stable output.
func CategoriesDescending(sums map[string]Money) []CategoryAmount {
	out := make([]CategoryAmount, 0, len(sums))
	for name, amount := range sums {
		out = append(out, CategoryAmount{Name: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// ByMonth sums amounts per "YYYY-MM" period.
func ByMonth(records []Record) map[string]Money {
	sums := make(map[string]Money)
	for _, r := range records {
		key := r.Month()
		sums[key] = Money{Cents: sums[key].Cents + r.Amount.Cents}
	}
	return sums
}

// MonthsAscending flattens a ByMonth map into a slice sorted by period.
// "YYYY-MM" keys sort lexicographically in chronological order.
func MonthsAscending(sums map[string]Money) []MonthAmount {
	out := make([]MonthAmount, 0, len(sums))
	for month, amount := range sums {
		out = append(out, MonthAmount{Month: month, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// LastMonths returns at most n trailing entries of an ascending month series.
func LastMonths(months []MonthAmount, n int) []MonthAmount {
	if n <= 0 || len(months) == 0 {
		return nil
	}
	if len(months) > n {
		months = months[len(months)-n:]
	}
	return months
}

// TopN returns the n records with the largest amounts, ties broken by
// original ledger order.
func TopN(records []Record, n int) []Record {
	if n <= 0 {
		return nil
	}
	idx := make([]int, len(records))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return records[idx[i]].Amount.Cents > records[idx[j]].Amount.Cents
	})
	if len(idx) > n {
		idx = idx[:n]
	}
	out := make([]Record, len(idx))
	for i, j := range idx {
		out[i] = records[j]
	}
	return out
}
