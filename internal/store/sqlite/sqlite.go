// Package sqlite implements the storage backend on a local SQLite database
// (modernc.org/sqlite, pure Go driver). Schema is managed by embedded
// golang-migrate migrations.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"spendtrack/internal/core"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db *sql.DB
}

func New(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) Append(ctx context.Context, user string, rec core.Record) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (username, created_at, category, description, amount_cents)
		 VALUES (?, ?, ?, ?, ?)`,
		user, rec.Time.Format(core.TimeLayout), rec.Category, rec.Description, rec.Amount.Cents)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}

	slog.DebugContext(ctx, "Expense saved to SQLite",
		"username", user,
		"category", rec.Category,
		"amount_cents", rec.Amount.Cents)
	return nil
}

func (r *Repository) Load(ctx context.Context, user string) ([]core.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT created_at, category, description, amount_cents
		 FROM expenses WHERE username = ? ORDER BY id`,
		user)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	records := []core.Record{}
	for rows.Next() {
		var createdAt, category, description string
		var cents int64
		if err := rows.Scan(&createdAt, &category, &description, &cents); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		ts, err := time.Parse(core.TimeLayout, createdAt)
		if err != nil {
			ts = time.Time{}
		}
		records = append(records, core.Record{
			Time:        ts,
			Category:    category,
			Description: description,
			Amount:      core.Money{Cents: cents},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return records, nil
}

func (r *Repository) Clear(ctx context.Context, user string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE username = ?`, user); err != nil {
		return fmt.Errorf("clear expenses: %w", err)
	}
	slog.InfoContext(ctx, "Ledger cleared", "username", user)
	return nil
}

func (r *Repository) RemoveLedger(ctx context.Context, user string) error {
	return r.Clear(ctx, user)
}

func (r *Repository) SetBudget(ctx context.Context, user, category string, limit core.Money) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (username, category, limit_cents) VALUES (?, ?, ?)
		 ON CONFLICT(username, category) DO UPDATE SET limit_cents = excluded.limit_cents`,
		user, category, limit.Cents)
	if err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}
	return nil
}

func (r *Repository) Budgets(ctx context.Context, user string) (map[string]core.Money, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, limit_cents FROM budgets WHERE username = ?`, user)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	budgets := map[string]core.Money{}
	for rows.Next() {
		var category string
		var cents int64
		if err := rows.Scan(&category, &cents); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets[category] = core.Money{Cents: cents}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}
	return budgets, nil
}

func (r *Repository) RemoveBudgets(ctx context.Context, user string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE username = ?`, user); err != nil {
		return fmt.Errorf("remove budgets: %w", err)
	}
	return nil
}
