package booking

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bbqaffair/catering-booking-and-orders/internal/domain"
)

// DraftStore holds in-progress drafts per session. Implementations
// expire abandoned drafts on their own; a draft that is never submitted
// is simply lost when its TTL runs out.
type DraftStore interface {
	Get(ctx context.Context, id uuid.UUID) (*Draft, error)
	Save(ctx context.Context, draft *Draft) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// MemoryDraftStore is the in-process DraftStore used in tests.
type MemoryDraftStore struct {
	mu     sync.RWMutex
	drafts map[uuid.UUID]Draft
	ttl    time.Duration
	saved  map[uuid.UUID]time.Time
}

func NewMemoryDraftStore(ttl time.Duration) *MemoryDraftStore {
	return &MemoryDraftStore{
		drafts: make(map[uuid.UUID]Draft),
		saved:  make(map[uuid.UUID]time.Time),
		ttl:    ttl,
	}
}

func (s *MemoryDraftStore) Get(ctx context.Context, id uuid.UUID) (*Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drafts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if s.ttl > 0 && time.Since(s.saved[id]) > s.ttl {
		return nil, domain.ErrNotFound
	}
	copied := d
	return &copied, nil
}

func (s *MemoryDraftStore) Save(ctx context.Context, draft *Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[draft.ID] = *draft
	s.saved[draft.ID] = time.Now()
	return nil
}

func (s *MemoryDraftStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, id)
	delete(s.saved, id)
	return nil
}
