// Package memory is an in-process stand-in for the Sheets snapshot, used
// when no spreadsheet is configured and in tests.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	ports "fintrack/internal/sheets"
)

type Store struct {
	mu     sync.Mutex
	rows   []ports.BalanceRow
	writes int
	err    error
}

var (
	_ ports.BalanceWriter = (*Store)(nil)
	_ ports.BalanceReader = (*Store)(nil)
)

func New() *Store {
	return &Store{}
}

// WriteBalances replaces the stored snapshot and returns a synthetic reference.
func (s *Store) WriteBalances(_ context.Context, rows []ports.BalanceRow) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.rows = slices.Clone(rows)
	s.writes++
	return fmt.Sprintf("mem:%d", s.writes), nil
}

func (s *Store) ReadBalances(_ context.Context) ([]ports.BalanceRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.rows), nil
}

// Writes reports how many snapshots were written.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// FailWith makes subsequent writes return err; nil restores normal behaviour.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}
