// Package memory is an in-memory RowAppender for tests and local runs
// without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"spendtrack/internal/core"
)

type Row struct {
	Owner  string
	Record core.Record
}

type Store struct {
	mu   sync.Mutex
	rows []Row
}

func New() *Store {
	return &Store{}
}

// AppendRecord stores the row and returns a synthetic reference.
func (s *Store) AppendRecord(_ context.Context, owner string, rec core.Record) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, Row{Owner: owner, Record: rec})
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (s *Store) Rows() []Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Row(nil), s.rows...)
}
