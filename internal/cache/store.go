package cache

import (
	"sync"
	"time"
)

// Store is a process-wide TTL memoization cache. Entries are immutable once
// stored: readers get either the old or the new value for a key, never a
// partially written one. Expired entries are treated as absent and replaced
// lazily on the next Set; there is no background eviction.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

type entry struct {
	value     any
	expiresAt time.Time
}

// NewStore constructs an empty cache store.
func NewStore() *Store {
	return &Store{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the live value for key, or false when the key is absent or its
// TTL has elapsed.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok || s.now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for ttl. Writes are last-write-wins; recomputing
// and re-storing the same key concurrently is harmless. A non-positive ttl
// stores nothing.
func (s *Store) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	s.mu.Lock()
	s.entries[key] = entry{value: value, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
}

// Len reports how many entries the store holds, expired ones included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// GetTyped is a convenience wrapper asserting the cached value's type. A
// value of a different type reads as a miss.
func GetTyped[T any](s *Store, key string) (T, bool) {
	var zero T
	raw, ok := s.Get(key)
	if !ok {
		return zero, false
	}
	value, ok := raw.(T)
	if !ok {
		return zero, false
	}
	return value, true
}
