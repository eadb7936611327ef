package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/jrsteele09/go-adcampaign-dashboard/internal/errors"
)

// InMemoryRepo is an in-memory implementation of Repo. Values are lost on exit.
type InMemoryRepo struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ Repo = (*InMemoryRepo)(nil)

// NewInMemoryRepo creates a new in-memory store, optionally pre-seeded
func NewInMemoryRepo(seed map[string]string) *InMemoryRepo {
	values := make(map[string]string, len(seed))
	for k, v := range seed {
		values[k] = v
	}
	return &InMemoryRepo{values: values}
}

func (r *InMemoryRepo) Get(_ context.Context, key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("key is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.values[key]
	if !ok {
		return "", errors.ErrKeyNotFound
	}
	return v, nil
}

func (r *InMemoryRepo) Set(_ context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.values[key] = value
	return nil
}

// Delete removes a key, deleting an absent key is not an error
func (r *InMemoryRepo) Delete(_ context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.values, key)
	return nil
}

// Snapshot returns a copy of every stored value
func (r *InMemoryRepo) Snapshot() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}
