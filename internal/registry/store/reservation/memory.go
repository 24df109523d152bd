// Package reservation implements the reservation ledger's keyed store:
// ticket → advance-backed commit, with permanent retirement of consumed
// tickets.
package reservation

import (
	"context"
	"sync"

	"vanity/internal/registry/models"
	id "vanity/pkg/domain"
	"vanity/pkg/platform/sentinel"
)

// InMemory keeps reservations in process memory. It favors clarity over
// performance and backs unit tests and single-node deployments.
type InMemory struct {
	mu      sync.RWMutex
	active  map[id.Ticket]models.Reservation
	retired map[id.Ticket]struct{}
}

func NewInMemory() *InMemory {
	return &InMemory{
		active:  make(map[id.Ticket]models.Reservation),
		retired: make(map[id.Ticket]struct{}),
	}
}

func (s *InMemory) Create(_ context.Context, r *models.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.retired[r.Ticket]; ok {
		return sentinel.ErrAlreadyUsed
	}
	if _, ok := s.active[r.Ticket]; ok {
		return sentinel.ErrConflict
	}
	s.active[r.Ticket] = *r
	return nil
}

func (s *InMemory) Find(_ context.Context, ticket id.Ticket) (*models.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.active[ticket]; ok {
		return &r, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) Consume(_ context.Context, ticket id.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.active[ticket]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.active, ticket)
	s.retired[ticket] = struct{}{}
	return nil
}
