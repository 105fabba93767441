// Package memory provides an in-process KVStore, the default backing for the
// localStorage action variant. Safe for concurrent use.
package memory

import (
	"context"
	"sync"

	"github.com/formworks/bindery/pkg/domain"
)

// Store implements ports.KVStore in memory.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewStore creates a new empty in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string][]byte),
	}
}

// Get retrieves the value for key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.data[key]
	if !ok {
		return nil, domain.ErrKeyNotFound
	}

	// Copy on read so the caller cannot mutate stored bytes.
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

// Set writes the value for key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	cp := make([]byte, len(value))
	copy(cp, value)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = cp
	return nil
}

// Delete removes the key.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Clear removes every key.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string][]byte)
	return nil
}

// Len returns the number of stored keys. Intended for tests.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
