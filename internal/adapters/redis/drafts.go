package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/bbqaffair/catering-booking-and-orders/internal/booking"
	"github.com/bbqaffair/catering-booking-and-orders/internal/domain"
)

// DraftStore keeps wizard drafts in Redis, one key per draft, with a
// TTL refreshed on every save. Abandoned drafts expire on their own.
type DraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDraftStore(client *redis.Client, ttl time.Duration) *DraftStore {
	return &DraftStore{client: client, ttl: ttl}
}

func draftKey(id uuid.UUID) string {
	return "draft:" + id.String()
}

func (s *DraftStore) Get(ctx context.Context, id uuid.UUID) (*booking.Draft, error) {
	val, err := s.client.Get(ctx, draftKey(id)).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var draft booking.Draft
	if err := json.Unmarshal(val, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

func (s *DraftStore) Save(ctx context.Context, draft *booking.Draft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, draftKey(draft.ID), data, s.ttl).Err()
}

func (s *DraftStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.client.Del(ctx, draftKey(id)).Err()
}
