package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"interviewassist/core/internal/models"

	"github.com/patrickmn/go-cache"
)

// MemorySessionStore keeps snapshots in process, serialized the same way as
// the Redis store. Used when no Redis is configured.
type MemorySessionStore struct {
	cache *cache.Cache
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	expiration := cache.NoExpiration
	cleanup := time.Duration(0)
	if ttl > 0 {
		expiration = ttl
		cleanup = 5 * time.Minute
	}
	return &MemorySessionStore{cache: cache.New(expiration, cleanup)}
}

func (s *MemorySessionStore) Save(ctx context.Context, candidateID string, snap models.SessionSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	s.cache.SetDefault(candidateID, data)
	return nil
}

func (s *MemorySessionStore) Load(ctx context.Context, candidateID string) (models.SessionSnapshot, error) {
	raw, ok := s.cache.Get(candidateID)
	if !ok {
		return models.SessionSnapshot{}, ErrNotFound
	}
	var snap models.SessionSnapshot
	if err := json.Unmarshal(raw.([]byte), &snap); err != nil {
		return models.SessionSnapshot{}, fmt.Errorf("failed to decode snapshot for %s: %w", candidateID, err)
	}
	return snap, nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, candidateID string) error {
	s.cache.Delete(candidateID)
	return nil
}

func (s *MemorySessionStore) ListIncomplete(ctx context.Context) ([]string, error) {
	var ids []string
	for id, item := range s.cache.Items() {
		var snap models.SessionSnapshot
		if err := json.Unmarshal(item.Object.([]byte), &snap); err != nil {
			continue
		}
		if snap.HasIncompleteSession {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
