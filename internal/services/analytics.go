package services

import (
	"context"

	"spendtrack/internal/core"
)

const (
	topExpenses    = 5
	trailingMonths = 6
)

// AnalyticsReport is the per-user spending overview.
type AnalyticsReport struct {
	TotalCents int64                 `json:"total_cents"`
	Count      int                   `json:"count"`
	ByCategory []core.CategoryAmount `json:"by_category"`
	ByMonth    []core.MonthAmount    `json:"by_month"`
	Top        []core.Record         `json:"top"`
}

// Analytics aggregates the user's full ledger: total and count, per-category
// sums largest first, the trailing six months, and the five largest records.
func (s *LedgerService) Analytics(ctx context.Context, user string) (*AnalyticsReport, error) {
	recs, err := s.store.Load(ctx, user)
	if err != nil {
		return nil, err
	}

	total, count := core.TotalAndCount(recs)
	months := core.MonthsAscending(core.ByMonth(recs))

	return &AnalyticsReport{
		TotalCents: total.Cents,
		Count:      count,
		ByCategory: core.CategoriesDescending(core.ByCategory(recs)),
		ByMonth:    core.LastMonths(months, trailingMonths),
		Top:        core.TopN(recs, topExpenses),
	}, nil
}
