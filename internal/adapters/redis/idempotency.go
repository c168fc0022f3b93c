package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Idempotency is the Redis key-value backend for stored idempotent
// responses. The higher-level policy lives in internal/idempotency.
type Idempotency struct {
	client *redis.Client
}

func NewIdempotency(client *redis.Client) *Idempotency {
	return &Idempotency{client: client}
}

func (i *Idempotency) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := i.client.Get(ctx, "idemp:"+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (i *Idempotency) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return i.client.Set(ctx, "idemp:"+key, value, ttl).Err()
}
