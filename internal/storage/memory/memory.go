// Package memory is a process-local KV used for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
)

type Store struct {
	mu     sync.Mutex
	values map[string]string
	writes int
}

func New() *Store {
	return &Store{values: make(map[string]string)}
}

// NewWithValues seeds the store; the map is copied.
func NewWithValues(values map[string]string) *Store {
	s := New()
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *Store) SetMany(_ context.Context, entries map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range entries {
		s.values[k] = v
	}
	s.writes++
	return nil
}

func (s *Store) Keys(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.values))
	for k := range s.values {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

// Writes returns how many SetMany calls were made.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *Store) Close() error { return nil }
