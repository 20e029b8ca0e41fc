// Package store defines the persistence ports for ledgers and budgets.
//
// Two backends implement them: file (per-user CSV ledger and JSON budget
// map, the default) and sqlite.
package store

import (
	"context"
	"errors"

	"spendtrack/internal/core"
)

// ErrInvalidUser is returned for usernames that cannot be used as a storage
// key (empty, or containing path metacharacters).
var ErrInvalidUser = errors.New("invalid username")

// Store persists per-user ledgers and budget maps.
//
// Ledgers are append-only in normal operation; Clear and RemoveLedger are the
// only destructive operations. Budgets are a flat category -> monthly limit
// map with upsert semantics. Missing users read as empty collections, never
// as errors.
type Store interface {
	// Append adds one record to the user's ledger.
	Append(ctx context.Context, user string, rec core.Record) error

	// Load returns the user's full ledger in insertion order. Malformed
	// amount fields parse as zero; malformed timestamps parse as the zero
	// time. A user with no ledger yet yields an empty slice.
	Load(ctx context.Context, user string) ([]core.Record, error)

	// Clear truncates the user's ledger to empty.
	Clear(ctx context.Context, user string) error

	// RemoveLedger deletes the user's ledger entirely (account deletion).
	RemoveLedger(ctx context.Context, user string) error

	// SetBudget upserts the monthly limit for one category.
	SetBudget(ctx context.Context, user, category string, limit core.Money) error

	// Budgets returns the user's full budget map.
	Budgets(ctx context.Context, user string) (map[string]core.Money, error)

	// RemoveBudgets deletes the user's budget map entirely.
	RemoveBudgets(ctx context.Context, user string) error

	Close() error
}
