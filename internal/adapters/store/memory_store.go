// Package store provides ProcessedStore implementations backing the
// processed-email ledger: in-memory for tests and one-shot runs, SQLite
// and MySQL for durable deployments.
package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory ProcessedStore. State is lost on restart,
// so it only suits tests and single-shot invocations.
type MemoryStore struct {
	mu            sync.RWMutex
	processed     map[string]struct{}
	lastProcessed string
}

// NewMemoryStore creates a new in-memory processed-email store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		processed: make(map[string]struct{}),
	}
}

// Contains reports whether the email ID has been processed.
func (s *MemoryStore) Contains(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.processed[id]
	return ok, nil
}

// Add records the email ID as processed.
func (s *MemoryStore) Add(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed[id] = struct{}{}
	return nil
}

// SetLastProcessed records the most recently processed email ID.
func (s *MemoryStore) SetLastProcessed(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastProcessed = id
	return nil
}

// LastProcessed returns the most recently processed email ID, or empty.
func (s *MemoryStore) LastProcessed(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastProcessed, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
