package query

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Entry is a committed query result.
type Entry struct {
	Data      []byte    `json:"data"`
	UpdatedAt time.Time `json:"updated_at"`
	// Stale marks the entry for refetch on next access. The data is
	// retained so it can keep being served while the refetch runs.
	Stale bool `json:"stale"`
}

// Store holds committed entries. Implementations must be safe for concurrent
// use. The in-memory store is the default; the Redis store lets co-located
// client instances share one cache.
type Store interface {
	// Get returns the entry for key, or nil when absent.
	Get(ctx context.Context, key string) (*Entry, error)
	// Set commits an entry under key.
	Set(ctx context.Context, key string, e *Entry) error
	// MarkStale flags every entry under the resource name as stale.
	MarkStale(ctx context.Context, resource string) error
}

// matchesResource reports whether a cache key belongs to a resource name.
// Keys are either the bare resource or "resource?filters", so a plain
// prefix check would wrongly match e.g. "services" against "services-x".
func matchesResource(key, resource string) bool {
	return key == resource || strings.HasPrefix(key, resource+"?")
}

// memStore is a mutex-guarded map store.
type memStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewMemStore returns the default in-process store.
func NewMemStore() Store {
	return &memStore{entries: make(map[string]*Entry)}
}

func (s *memStore) Get(ctx context.Context, key string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (s *memStore) Set(ctx context.Context, key string, e *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.entries[key] = &cp
	return nil
}

func (s *memStore) MarkStale(ctx context.Context, resource string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, e := range s.entries {
		if matchesResource(key, resource) {
			e.Stale = true
		}
	}
	return nil
}
