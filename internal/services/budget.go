package services

import (
	"context"
	"fmt"
	"sort"

	"spendtrack/internal/core"
	"spendtrack/internal/log"
)

// BudgetStatus is the result of evaluating one category's budget against the
// current calendar month.
type BudgetStatus struct {
	Category   string `json:"category"`
	SpentCents int64  `json:"spent_cents"`
	LimitCents int64  `json:"limit_cents"`
	Exceeded   bool   `json:"exceeded"`
}

// BudgetProgress extends BudgetStatus with the fraction of the limit used,
// for the progress view. Percent can exceed 100.
type BudgetProgress struct {
	BudgetStatus
	Percent float64 `json:"percent"`
}

// SetBudget upserts the monthly limit for a category. Limits are
// non-negative; a zero limit flags any spending. Removing a budget is not
// supported per category, only wholesale via account deletion.
func (s *LedgerService) SetBudget(ctx context.Context, user, category string, limit core.Money) error {
	if category == "" {
		return core.ErrEmptyCategory
	}
	if limit.Cents < 0 {
		return core.ErrInvalidAmount
	}
	if err := s.store.SetBudget(ctx, user, category, limit); err != nil {
		return fmt.Errorf("set budget: %w", err)
	}
	s.logger.InfoContext(ctx, "Set budget",
		log.FieldUsername, user,
		log.FieldCategory, category,
		log.FieldLimitCents, limit.Cents)
	return nil
}

// Budgets returns the user's full budget map.
func (s *LedgerService) Budgets(ctx context.Context, user string) (map[string]core.Money, error) {
	return s.store.Budgets(ctx, user)
}

// Evaluate sums the user's current-month spending in the category and
// compares it against the configured limit. Category match is exact and
// case-sensitive. Returns nil when no budget is set for the category.
func (s *LedgerService) Evaluate(ctx context.Context, user, category string) (*BudgetStatus, error) {
	budgets, err := s.store.Budgets(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("load budgets: %w", err)
	}
	limit, ok := budgets[category]
	if !ok {
		return nil, nil
	}

	recs, err := s.store.Load(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	ref := s.now()
	var spent int64
	for _, rec := range recs {
		if rec.Category == category && core.SameCalendarMonth(rec.Time, ref) {
			spent += rec.Amount.Cents
		}
	}

	return &BudgetStatus{
		Category:   category,
		SpentCents: spent,
		LimitCents: limit.Cents,
		Exceeded:   spent > limit.Cents,
	}, nil
}

// Progress evaluates every budgeted category at once, sorted by category
// name for stable output.
func (s *LedgerService) Progress(ctx context.Context, user string) ([]BudgetProgress, error) {
	budgets, err := s.store.Budgets(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("load budgets: %w", err)
	}
	if len(budgets) == 0 {
		return nil, nil
	}

	recs, err := s.store.Load(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	ref := s.now()
	spent := make(map[string]int64, len(budgets))
	for _, rec := range recs {
		if _, ok := budgets[rec.Category]; !ok {
			continue
		}
		if core.SameCalendarMonth(rec.Time, ref) {
			spent[rec.Category] += rec.Amount.Cents
		}
	}

	out := make([]BudgetProgress, 0, len(budgets))
	for category, limit := range budgets {
		status := BudgetStatus{
			Category:   category,
			SpentCents: spent[category],
			LimitCents: limit.Cents,
			Exceeded:   spent[category] > limit.Cents,
		}
		var percent float64
		if status.LimitCents > 0 {
			percent = float64(status.SpentCents) / float64(status.LimitCents) * 100
		}
		out = append(out, BudgetProgress{BudgetStatus: status, Percent: percent})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}
