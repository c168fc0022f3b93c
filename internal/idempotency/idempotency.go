// Package idempotency stores responses to order-affecting POSTs keyed
// by the client's Idempotency-Key header. Replays return the stored
// response instead of repeating a non-idempotent create, which is what
// makes retrying a failed submission safe.
package idempotency

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// KV is the response storage backend. Redis in production; the memory
// implementation below in tests.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type Idempotency struct {
	kv  KV
	ttl time.Duration
}

func NewIdempotency(kv KV, ttl time.Duration) *Idempotency {
	return &Idempotency{kv: kv, ttl: ttl}
}

type Response struct {
	Status int    `json:"status"`
	Result []byte `json:"result"`
}

func (i *Idempotency) Get(ctx context.Context, key string) (*Response, error) {
	if key == "" {
		return nil, nil
	}
	data, err := i.kv.Get(ctx, key)
	if err != nil || data == nil {
		return nil, err
	}
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (i *Idempotency) Set(ctx context.Context, key string, resp Response) error {
	if key == "" {
		return nil
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return i.kv.Set(ctx, key, data, i.ttl)
}

// MemoryKV is an in-process KV for tests.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (m *MemoryKV) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data[key], nil
}

func (m *MemoryKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}
