package kvstore

import (
	"context"
	"errors"
	"sync"
)

// InMemoryStore keeps values for the lifetime of the process.
type InMemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ Store = (*InMemoryStore)(nil)

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		values: make(map[string]string),
	}
}

func (s *InMemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (s *InMemoryStore) Set(_ context.Context, key, value string) error {
	if key == "" {
		return errors.New("key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
