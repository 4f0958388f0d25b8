// Package memory keeps key-value data in process memory. Nothing survives a
// restart; it backs tests and throwaway demo runs.
package memory

import (
	"context"
	"sync"

	"github.com/Arsen1987144/joycity-marketplace/internal/repository"
)

type kvStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewKVStore creates an empty in-memory KVStore.
func NewKVStore() repository.KVStore {
	return &kvStore{data: make(map[string]string)}
}

func (s *kvStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *kvStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *kvStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *kvStore) Close() error { return nil }
