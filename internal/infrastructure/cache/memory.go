// Package cache provides a run-scoped in-memory store for judge scores.
package cache

import "sync"

// Store is a concurrent key-value store that lives for one evaluation run.
// Entries never expire; the whole store is discarded with the run.
type Store struct {
	mu    sync.RWMutex
	items map[string]any
}

// NewStore creates an empty run-scoped store
func NewStore() *Store {
	return &Store{items: make(map[string]any)}
}

// Set stores a value under key, replacing any previous value
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
}

// Get retrieves a value by key
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return v, ok
}

// Delete removes a key
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
}

// Len returns the number of stored entries
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
