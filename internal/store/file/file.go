// Package file implements the flat-file storage backend: one CSV ledger and
// one JSON budget file per user, in a single data directory.
//
// Mutations rewrite budget files whole (temp file + rename) and append ledger
// rows in place. A mutex serializes writers within the process; concurrent
// processes writing the same user's files race with last-writer-wins, which
// is the accepted deployment model for this tool.
package file

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"spendtrack/internal/core"
	"spendtrack/internal/store"
)

var ledgerHeader = []string{"Date", "Category", "Description", "Amount"}

type Store struct {
	dir string
	mu  sync.Mutex
}

func New(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Store{dir: dataDir}, nil
}

func (s *Store) ledgerPath(user string) string {
	return filepath.Join(s.dir, "expenses_"+user+".csv")
}

func (s *Store) budgetPath(user string) string {
	return filepath.Join(s.dir, "budgets_"+user+".json")
}

// validUser rejects usernames that would escape the data directory when
// embedded in a filename.
func validUser(user string) error {
	if user == "" || user != filepath.Base(user) || strings.ContainsAny(user, "/\\") || strings.Contains(user, "..") {
		return store.ErrInvalidUser
	}
	return nil
}

func (s *Store) Append(ctx context.Context, user string, rec core.Record) error {
	if err := validUser(user); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.ledgerPath(user)
	if err := s.ensureHeader(path); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	row := []string{
		rec.Time.Format(core.TimeLayout),
		rec.Category,
		rec.Description,
		core.FormatCents(rec.Amount.Cents),
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("write ledger row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush ledger row: %w", err)
	}

	slog.DebugContext(ctx, "Ledger row appended",
		"username", user,
		"category", rec.Category,
		"amount_cents", rec.Amount.Cents)
	return nil
}

func (s *Store) Load(ctx context.Context, user string) ([]core.Record, error) {
	if err := validUser(user); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.ledgerPath(user))
	if err != nil {
		if os.IsNotExist(err) {
			// No ledger yet reads as an empty one
			return []core.Record{}, nil
		}
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	records := make([]core.Record, 0, len(rows))
	for i, row := range rows {
		if i == 0 && isHeader(row) {
			continue
		}
		if len(row) < 4 {
			continue
		}
		ts, err := time.Parse(core.TimeLayout, strings.TrimSpace(row[0]))
		if err != nil {
			// Keep the row; an unparseable date degrades to the zero time
			ts = time.Time{}
		}
		records = append(records, core.Record{
			Time:        ts,
			Category:    row[1],
			Description: row[2],
			Amount:      core.Money{Cents: core.LenientParseCents(row[3])},
		})
	}
	return records, nil
}

func (s *Store) Clear(ctx context.Context, user string) error {
	if err := validUser(user); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeHeaderOnly(s.ledgerPath(user)); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Ledger cleared", "username", user)
	return nil
}

func (s *Store) RemoveLedger(ctx context.Context, user string) error {
	if err := validUser(user); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.ledgerPath(user)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove ledger: %w", err)
	}
	return nil
}

func (s *Store) SetBudget(ctx context.Context, user, category string, limit core.Money) error {
	if err := validUser(user); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	budgets := s.loadBudgets(user)
	budgets[category] = limit
	return s.saveBudgets(user, budgets)
}

func (s *Store) Budgets(ctx context.Context, user string) (map[string]core.Money, error) {
	if err := validUser(user); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadBudgets(user), nil
}

func (s *Store) RemoveBudgets(ctx context.Context, user string) error {
	if err := validUser(user); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.budgetPath(user)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove budgets: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return nil }

// loadBudgets reads the budget file. Missing or malformed files read as an
// empty map; budget data is always recoverable from the user.
func (s *Store) loadBudgets(user string) map[string]core.Money {
	budgets := map[string]core.Money{}
	data, err := os.ReadFile(s.budgetPath(user))
	if err != nil {
		return budgets
	}
	raw := map[string]float64{}
	if err := json.Unmarshal(data, &raw); err != nil {
		slog.Warn("Malformed budget file, treating as empty", "username", user, "error", err)
		return budgets
	}
	for category, limit := range raw {
		if limit < 0 || math.IsNaN(limit) || math.IsInf(limit, 0) {
			continue
		}
		budgets[category] = core.Money{Cents: int64(limit*100 + 0.5)}
	}
	return budgets
}

func (s *Store) saveBudgets(user string, budgets map[string]core.Money) error {
	raw := make(map[string]float64, len(budgets))
	for category, limit := range budgets {
		raw[category] = float64(limit.Cents) / 100.0
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal budgets: %w", err)
	}
	path := s.budgetPath(user)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write budgets: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace budgets: %w", err)
	}
	return nil
}

// ensureHeader creates the ledger file with its header row if absent.
func (s *Store) ensureHeader(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat ledger: %w", err)
	}
	return s.writeHeaderOnly(path)
}

// writeHeaderOnly replaces the ledger with just its header, atomically.
func (s *Store) writeHeaderOnly(path string) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create ledger: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(ledgerHeader); err != nil {
		f.Close()
		return fmt.Errorf("write ledger header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush ledger header: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close ledger: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}

func isHeader(row []string) bool {
	return len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "date")
}
