package memory

import (
	"context"
	"path"
	"sync"

	"github.com/munidon/bw-genius/internal/store"
)

// Store is an in-memory implementation of the session store
type Store struct {
	mu     sync.RWMutex
	values map[string]string
}

// New creates a new in-memory store instance
func New() *Store {
	return &Store{
		values: make(map[string]string),
	}
}

// Ensure Store implements the interface
var _ store.Store = (*Store)(nil)

func (s *Store) Put(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	if !ok {
		return "", store.ErrKeyNotFound
	}
	return value, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *Store) DeleteMatching(ctx context.Context, patterns ...string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key := range s.values {
		for _, pattern := range patterns {
			ok, err := path.Match(pattern, key)
			if err != nil {
				return removed, err
			}
			if ok {
				delete(s.values, key)
				removed++
				break
			}
		}
	}
	return removed, nil
}

func (s *Store) Close() error {
	return nil
}

// Len returns the number of stored keys (for tests)
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}
