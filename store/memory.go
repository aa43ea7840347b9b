package store

import (
	"context"
	"sync"
)

// MemoryStore is an ephemeral Store backed by a map. It is suitable for
// tests and single-process runs; nothing survives the process.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[Key][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[Key][]byte)}
}

// Get returns the blob stored under key, or ErrNotFound.
func (s *MemoryStore) Get(ctx context.Context, key Key) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(blob))
	copy(out, blob)
	return out, nil
}

// Set stores a copy of the blob under key.
func (s *MemoryStore) Set(ctx context.Context, key Key, value []byte) error {
	blob := make([]byte, len(value))
	copy(blob, value)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = blob
	return nil
}

// Contains reports whether an entry exists under key.
func (s *MemoryStore) Contains(ctx context.Context, key Key) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[key]
	return ok, nil
}

// Remove deletes the entry under key, if any.
func (s *MemoryStore) Remove(ctx context.Context, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// Len returns the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
