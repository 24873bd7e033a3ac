package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"interviewassist/core/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix     = "interview:session:"
	incompleteKey = "interview:incomplete"
)

type RedisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisSessionStore stores snapshots with the given ttl; zero keeps them
// until deleted.
func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, ttl: ttl}
}

func sessionKey(candidateID string) string {
	return keyPrefix + candidateID
}

func (s *RedisSessionStore) Save(ctx context.Context, candidateID string, snap models.SessionSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(candidateID), data, s.ttl)
		if snap.HasIncompleteSession {
			pipe.SAdd(ctx, incompleteKey, candidateID)
		} else {
			pipe.SRem(ctx, incompleteKey, candidateID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save snapshot for %s: %w", candidateID, err)
	}
	return nil
}

func (s *RedisSessionStore) Load(ctx context.Context, candidateID string) (models.SessionSnapshot, error) {
	data, err := s.rdb.Get(ctx, sessionKey(candidateID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.SessionSnapshot{}, ErrNotFound
	}
	if err != nil {
		return models.SessionSnapshot{}, fmt.Errorf("failed to load snapshot for %s: %w", candidateID, err)
	}

	var snap models.SessionSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return models.SessionSnapshot{}, fmt.Errorf("failed to decode snapshot for %s: %w", candidateID, err)
	}
	return snap, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, candidateID string) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, sessionKey(candidateID))
		pipe.SRem(ctx, incompleteKey, candidateID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete snapshot for %s: %w", candidateID, err)
	}
	return nil
}

// ListIncomplete also drops ids whose snapshot has expired.
func (s *RedisSessionStore) ListIncomplete(ctx context.Context) ([]string, error) {
	ids, err := s.rdb.SMembers(ctx, incompleteKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list incomplete sessions: %w", err)
	}

	live := make([]string, 0, len(ids))
	for _, id := range ids {
		n, err := s.rdb.Exists(ctx, sessionKey(id)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to check snapshot for %s: %w", id, err)
		}
		if n == 0 {
			s.rdb.SRem(ctx, incompleteKey, id)
			continue
		}
		live = append(live, id)
	}
	sort.Strings(live)
	return live, nil
}

func (s *RedisSessionStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
