package storage

import (
	"context"
	"sync"
)

type MemoryStorage struct {
	mu        sync.RWMutex
	documents map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		documents: make(map[string][]byte),
	}
}

func (s *MemoryStorage) Load(ctx context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	body, exists := s.documents[name]
	if !exists {
		return nil, ErrNotFound
	}
	return append([]byte(nil), body...), nil
}

func (s *MemoryStorage) Save(ctx context.Context, name string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.documents[name] = append([]byte(nil), body...)
	return nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
