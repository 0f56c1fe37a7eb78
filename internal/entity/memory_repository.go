package entity

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu       sync.RWMutex
	byMSISDN map[string]Entity
	byName   map[string]Entity
}

// NewMemoryRepository builds an in-memory entity store for testing. Both
// uniqueness checks happen under one lock, mirroring the atomic create of the
// database-backed stores.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		byMSISDN: make(map[string]Entity),
		byName:   make(map[string]Entity),
	}
}

func (r *memoryRepository) Create(_ context.Context, e Entity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byMSISDN[e.MSISDNHash]; exists {
		return ErrDuplicate
	}
	if _, exists := r.byName[e.Username]; exists {
		return ErrDuplicate
	}
	r.byMSISDN[e.MSISDNHash] = e
	r.byName[e.Username] = e
	return nil
}

func (r *memoryRepository) FindByMSISDN(_ context.Context, msisdn string) (Entity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byMSISDN[msisdn]
	if !ok {
		return Entity{}, ErrNotFound
	}
	return e, nil
}

func (r *memoryRepository) FindByUsername(_ context.Context, username string) (Entity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byName[username]
	if !ok {
		return Entity{}, ErrNotFound
	}
	return e, nil
}
