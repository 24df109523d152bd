package reservation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"vanity/internal/registry/models"
	id "vanity/pkg/domain"
	"vanity/pkg/platform/sentinel"
)

const (
	activeKeyPrefix = "reservation:"
	retiredSetKey   = "reservation:retired"
)

// Redis keeps active reservations as per-ticket keys and retired tickets in a
// set. The registry service serializes all mutations, so the store does not
// need cross-key atomicity of its own.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

type redisReservation struct {
	Claimant    string    `json:"claimant"`
	AdvancePaid string    `json:"advance_paid"`
	HoldRef     string    `json:"hold_ref"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s *Redis) Create(ctx context.Context, r *models.Reservation) error {
	retired, err := s.client.SIsMember(ctx, retiredSetKey, r.Ticket.String()).Result()
	if err != nil {
		return fmt.Errorf("check retired ticket: %w", err)
	}
	if retired {
		return sentinel.ErrAlreadyUsed
	}

	payload, err := json.Marshal(redisReservation{
		Claimant:    r.Claimant.String(),
		AdvancePaid: r.AdvancePaid.String(),
		HoldRef:     r.HoldRef.String(),
		CreatedAt:   r.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal reservation: %w", err)
	}

	created, err := s.client.SetNX(ctx, activeKeyPrefix+r.Ticket.String(), payload, 0).Result()
	if err != nil {
		return fmt.Errorf("store reservation: %w", err)
	}
	if !created {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *Redis) Find(ctx context.Context, ticket id.Ticket) (*models.Reservation, error) {
	raw, err := s.client.Get(ctx, activeKeyPrefix+ticket.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load reservation: %w", err)
	}

	var rr redisReservation
	if err := json.Unmarshal(raw, &rr); err != nil {
		return nil, fmt.Errorf("unmarshal reservation: %w", err)
	}
	advance, err := id.ParseAmount(rr.AdvancePaid)
	if err != nil {
		return nil, fmt.Errorf("decode reservation amount: %w", err)
	}
	holdRef, err := uuid.Parse(rr.HoldRef)
	if err != nil {
		return nil, fmt.Errorf("decode reservation hold ref: %w", err)
	}
	return &models.Reservation{
		Ticket:      ticket,
		Claimant:    id.AccountID(rr.Claimant),
		AdvancePaid: advance,
		CreatedAt:   rr.CreatedAt,
		HoldRef:     holdRef,
	}, nil
}

func (s *Redis) Consume(ctx context.Context, ticket id.Ticket) error {
	deleted, err := s.client.Del(ctx, activeKeyPrefix+ticket.String()).Result()
	if err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	if deleted == 0 {
		return sentinel.ErrNotFound
	}
	if err := s.client.SAdd(ctx, retiredSetKey, ticket.String()).Err(); err != nil {
		return fmt.Errorf("retire ticket: %w", err)
	}
	return nil
}
