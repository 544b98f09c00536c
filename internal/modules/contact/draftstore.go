package contact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DraftStore keeps drafts between requests while an operator fills them in.
type DraftStore interface {
	Get(ctx context.Context, id string) (Draft, error)
	Save(ctx context.Context, d Draft) error
	Delete(ctx context.Context, id string) error
}

type redisDraftStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisDraftStore stores drafts as JSON under draft:{id}. Each save
// refreshes the expiry.
func NewRedisDraftStore(client redis.UniversalClient, ttl time.Duration) DraftStore {
	return &redisDraftStore{client: client, ttl: ttl}
}

func draftKey(id string) string { return "draft:" + id }

func (s *redisDraftStore) Get(ctx context.Context, id string) (Draft, error) {
	raw, err := s.client.Get(ctx, draftKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Draft{}, ErrDraftNotFound
	}
	if err != nil {
		return Draft{}, fmt.Errorf("load draft %s: %w", id, err)
	}
	var d Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return Draft{}, fmt.Errorf("decode draft %s: %w", id, err)
	}
	return d, nil
}

func (s *redisDraftStore) Save(ctx context.Context, d Draft) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft %s: %w", d.ID, err)
	}
	if err := s.client.Set(ctx, draftKey(d.ID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save draft %s: %w", d.ID, err)
	}
	return nil
}

func (s *redisDraftStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, draftKey(id)).Err(); err != nil {
		return fmt.Errorf("delete draft %s: %w", id, err)
	}
	return nil
}

type memoryDraftStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	drafts map[string]memoryEntry
}

type memoryEntry struct {
	draft   Draft
	expires time.Time
}

// NewMemoryDraftStore keeps drafts in process. Used when Redis is not configured.
func NewMemoryDraftStore(ttl time.Duration) DraftStore {
	return &memoryDraftStore{ttl: ttl, now: time.Now, drafts: map[string]memoryEntry{}}
}

func (s *memoryDraftStore) Get(_ context.Context, id string) (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.drafts[id]
	if !ok || !s.now().Before(e.expires) {
		delete(s.drafts, id)
		return Draft{}, ErrDraftNotFound
	}
	return e.draft.clone(), nil
}

func (s *memoryDraftStore) Save(_ context.Context, d Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[d.ID] = memoryEntry{draft: d.clone(), expires: s.now().Add(s.ttl)}
	return nil
}

func (s *memoryDraftStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, id)
	return nil
}
