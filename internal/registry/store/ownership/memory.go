// Package ownership implements the name → ownership record store.
package ownership

import (
	"context"
	"sync"

	"vanity/internal/registry/models"
	"vanity/pkg/platform/sentinel"
)

// InMemory keeps ownership records in process memory.
type InMemory struct {
	mu      sync.RWMutex
	records map[string]models.Ownership
}

func NewInMemory() *InMemory {
	return &InMemory{records: make(map[string]models.Ownership)}
}

func (s *InMemory) Find(_ context.Context, name string) (*models.Ownership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if o, ok := s.records[name]; ok {
		return &o, nil
	}
	return nil, sentinel.ErrNotFound
}

// Put creates or replaces the record for its name. Replacement of a lapsed
// record is validated by the service before it calls Put.
func (s *InMemory) Put(_ context.Context, o *models.Ownership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[o.Name] = *o
	return nil
}

// Execute runs validate-then-mutate under the store lock so no other change
// can interleave between the check and the write.
func (s *InMemory) Execute(_ context.Context, name string, validate func(*models.Ownership) error, mutate func(*models.Ownership)) (*models.Ownership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.records[name]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(&o); err != nil {
		return nil, err
	}
	mutate(&o)
	s.records[name] = o
	return &o, nil
}
