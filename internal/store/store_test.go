package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"interviewassist/core/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func sampleSnapshot(candidateID string, incomplete bool) models.SessionSnapshot {
	return models.SessionSnapshot{
		Session: &models.InterviewSession{
			CandidateID:          candidateID,
			Questions:            []models.InterviewQuestion{{ID: "q1", Question: "What is JSX?", Difficulty: models.DifficultyEasy, TimeLimit: 20}},
			CurrentQuestionIndex: 0,
			TotalQuestions:       1,
			TimeRemaining:        13,
			IsActive:             incomplete,
			IsPaused:             true,
			StartedAt:            time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC),
		},
		HasIncompleteSession: incomplete,
		ResumeData: &models.ResumeData{
			Name:  "Ada",
			Email: "ada@example.com",
			Phone: "555",
			File:  strings.NewReader("%PDF"),
		},
	}
}

func stores(t *testing.T) map[string]SessionStore {
	_, client := setupTestRedis(t)
	return map[string]SessionStore{
		"redis":  NewRedisSessionStore(client, time.Hour),
		"memory": NewMemorySessionStore(time.Hour),
	}
}

func TestSessionStoreContract(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.Load(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Save(ctx, "cand-b", sampleSnapshot("cand-b", true)))
			require.NoError(t, s.Save(ctx, "cand-a", sampleSnapshot("cand-a", true)))
			require.NoError(t, s.Save(ctx, "cand-c", sampleSnapshot("cand-c", false)))

			snap, err := s.Load(ctx, "cand-b")
			require.NoError(t, err)
			assert.Equal(t, 13, snap.Session.TimeRemaining)
			assert.True(t, snap.Session.IsPaused)
			assert.True(t, snap.HasIncompleteSession)
			require.NotNil(t, snap.ResumeData)
			assert.Equal(t, "Ada", snap.ResumeData.Name)
			assert.Nil(t, snap.ResumeData.File, "file handles must not survive persistence")

			ids, err := s.ListIncomplete(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"cand-a", "cand-b"}, ids)

			require.NoError(t, s.Save(ctx, "cand-a", sampleSnapshot("cand-a", false)))
			require.NoError(t, s.Delete(ctx, "cand-b"))

			ids, err = s.ListIncomplete(ctx)
			require.NoError(t, err)
			assert.Empty(t, ids)

			_, err = s.Load(ctx, "cand-b")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestRedisSessionStoreKeysAndExpiry(t *testing.T) {
	mr, client := setupTestRedis(t)
	s := NewRedisSessionStore(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "cand-1", sampleSnapshot("cand-1", true)))
	assert.True(t, mr.Exists("interview:session:cand-1"))
	ok, err := mr.SIsMember("interview:incomplete", "cand-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Minute, mr.TTL("interview:session:cand-1"))

	mr.FastForward(2 * time.Minute)

	ids, err := s.ListIncomplete(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids, "expired snapshots must not be listed")
	ok, _ = mr.SIsMember("interview:incomplete", "cand-1")
	assert.False(t, ok, "stale set member should be pruned")

	require.NoError(t, s.Ping(ctx))
}

func TestRedisSessionStoreCorruptPayload(t *testing.T) {
	mr, client := setupTestRedis(t)
	s := NewRedisSessionStore(client, 0)
	require.NoError(t, mr.Set("interview:session:bad", "{not json"))

	_, err := s.Load(context.Background(), "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
