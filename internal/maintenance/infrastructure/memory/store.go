// Package memory provides an in-memory store for tests and ephemeral runs.
package memory

import (
	"context"
	"sync"
)

// Store keeps bucket payloads in a map.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{data: make(map[string][]byte)}
}

// Get returns the payload for a key, or (nil, nil) when absent.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Set stores a copy of the payload under key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	_ = ctx
	data := make([]byte, len(value))
	copy(data, value)
	s.mu.Lock()
	s.data[key] = data
	s.mu.Unlock()
	return nil
}
