package storage

import (
	"context"
	"sync"
)

// MemoryStorage keeps blobs in a map. It backs tests and local development
// where no redis is available.
type MemoryStorage struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{blobs: map[string][]byte{}}
}

func (s *MemoryStorage) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.blobs[key]
	if !ok {
		return nil, ErrNotFound
	}
	copied := make([]byte, len(blob))
	copy(copied, blob)
	return copied, nil
}

func (s *MemoryStorage) Save(_ context.Context, key string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]byte, len(blob))
	copy(copied, blob)
	s.blobs[key] = copied
	return nil
}

func (s *MemoryStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}
