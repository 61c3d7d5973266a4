package session

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by Storage.Load when the key has never been saved.
var ErrNotFound = errors.New("key not found")

// Storage is a durable key-value slot for the persisted snapshot.
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// Pinger is implemented by storages backed by a remote service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// MemoryStorage is an in-memory Storage for tests and ephemeral runs.
type MemoryStorage struct {
	data map[string][]byte
	mu   sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string][]byte)}
}

func (s *MemoryStorage) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *MemoryStorage) Save(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = append([]byte(nil), data...)
	return nil
}
