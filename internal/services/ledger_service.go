// Package services orchestrates ledger, budget and admin operations on top
// of the storage backend and the event stream.
package services

import (
	"context"
	"fmt"
	"time"

	"spendtrack/internal/amqp"
	"spendtrack/internal/core"
	"spendtrack/internal/log"
	"spendtrack/internal/store"
)

// Publisher is the slice of the AMQP client the ledger needs. A nil Publisher
// disables event publishing.
type Publisher interface {
	Publish(ctx context.Context, msg *amqp.Message) error
}

// LedgerService coordinates record appends with budget evaluation and
// best-effort event publishing. Storage is the source of truth; a failed
// publish never fails the request.
type LedgerService struct {
	store     store.Store
	publisher Publisher
	logger    *log.Logger
	now       func() time.Time
}

func NewLedgerService(st store.Store, publisher Publisher, logger *log.Logger) *LedgerService {
	return &LedgerService{
		store:     st,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentLedger),
		now:       time.Now,
	}
}

// Add validates and appends a record to the user's ledger, then evaluates the
// budget for its category. The stored record is returned so callers see the
// stamped timestamp; a nil status means no budget is set for the category.
func (s *LedgerService) Add(ctx context.Context, user string, rec core.Record) (core.Record, *BudgetStatus, error) {
	if err := rec.Validate(); err != nil {
		return core.Record{}, nil, err
	}
	if rec.Time.IsZero() {
		rec.Time = s.now()
	}

	if err := s.store.Append(ctx, user, rec); err != nil {
		return core.Record{}, nil, fmt.Errorf("append record: %w", err)
	}

	s.logger.InfoContext(ctx, "Recorded expense",
		log.FieldUsername, user,
		log.FieldCategory, rec.Category,
		log.FieldAmountCents, rec.Amount.Cents)

	status, err := s.Evaluate(ctx, user, rec.Category)
	if err != nil {
		// The record is saved; budget evaluation is advisory.
		s.logger.ErrorContext(ctx, "Failed to evaluate budget after append",
			log.FieldUsername, user,
			log.FieldCategory, rec.Category,
			log.FieldError, err)
		status = nil
	}

	s.publishAdded(ctx, user, rec)
	if status != nil && status.Exceeded {
		s.publishAlert(ctx, user, status)
	}

	return rec, status, nil
}

// History returns the user's full ledger in insertion order.
func (s *LedgerService) History(ctx context.Context, user string) ([]core.Record, error) {
	return s.store.Load(ctx, user)
}

// Filter returns the records matching the criteria, preserving order.
func (s *LedgerService) Filter(ctx context.Context, user string, crit core.FilterCriteria) ([]core.Record, error) {
	recs, err := s.store.Load(ctx, user)
	if err != nil {
		return nil, err
	}
	return core.Filter(recs, crit), nil
}

// Clear truncates the user's ledger. Budgets are untouched.
func (s *LedgerService) Clear(ctx context.Context, user string) error {
	if err := s.store.Clear(ctx, user); err != nil {
		return fmt.Errorf("clear ledger: %w", err)
	}
	s.logger.InfoContext(ctx, "Cleared ledger", log.FieldUsername, user)
	return nil
}

func (s *LedgerService) publishAdded(ctx context.Context, user string, rec core.Record) {
	if s.publisher == nil {
		return
	}
	msg := amqp.NewExpenseAdded(user, rec.Category, rec.Description, rec.Amount.Cents, rec.Time)
	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish expense event",
			log.FieldUsername, user,
			log.FieldError, err)
	}
}

func (s *LedgerService) publishAlert(ctx context.Context, user string, status *BudgetStatus) {
	if s.publisher == nil {
		return
	}
	msg := amqp.NewBudgetAlert(user, status.Category, status.SpentCents, status.LimitCents)
	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish budget alert",
			log.FieldUsername, user,
			log.FieldCategory, status.Category,
			log.FieldError, err)
	}
}

func (s *LedgerService) Close() error {
	return s.store.Close()
}
