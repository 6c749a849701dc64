package repositories

import (
	"context"
	"sync"
)

// memoryRepository keeps client state for the lifetime of the process
type memoryRepository struct {
	mu     sync.RWMutex
	data   map[string]string
	closed bool
}

// NewMemoryRepository creates an in-memory key-value repository
func NewMemoryRepository() KeyValueRepository {
	return &memoryRepository{data: make(map[string]string)}
}

func (r *memoryRepository) Get(_ context.Context, key string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return "", false, ErrStoreClosed
	}
	v, ok := r.data[key]
	return v, ok, nil
}

func (r *memoryRepository) Set(_ context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrStoreClosed
	}
	r.data[key] = value
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrStoreClosed
	}
	delete(r.data, key)
	return nil
}

func (r *memoryRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}
