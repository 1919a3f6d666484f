// Package memstore is an in-process Storage, used by tests and by the
// "memory" backend for throwaway sessions.
package memstore

import (
	"context"
	"sync"
)

// Store holds a single string value. Writes counts successful writes so
// tests can assert that rejected operations never persisted.
type Store struct {
	mu     sync.Mutex
	value  string
	set    bool
	writes int

	// WriteErr, when set, makes every Write fail without changing the value.
	WriteErr error
	// ReadErr, when set, makes every Read fail.
	ReadErr error
}

func New() *Store { return &Store{} }

// NewWith returns a Store that already holds value.
func NewWith(value string) *Store { return &Store{value: value, set: true} }

func (s *Store) Read(ctx context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ReadErr != nil {
		return "", false, s.ReadErr
	}
	return s.value, s.set, nil
}

func (s *Store) Write(ctx context.Context, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		return s.WriteErr
	}
	s.value, s.set = value, true
	s.writes++
	return nil
}

// Value returns the stored value and whether one was ever written.
func (s *Store) Value() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.set
}

func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
