// Package store persists interview session snapshots (the "interview"
// namespace) so a candidate can resume after a reload.
package store

import (
	"context"
	"errors"

	"interviewassist/core/internal/models"
)

var ErrNotFound = errors.New("session snapshot not found")

type SessionStore interface {
	Save(ctx context.Context, candidateID string, snap models.SessionSnapshot) error
	Load(ctx context.Context, candidateID string) (models.SessionSnapshot, error)
	Delete(ctx context.Context, candidateID string) error
	// ListIncomplete returns candidate ids whose session can be resumed, sorted.
	ListIncomplete(ctx context.Context) ([]string, error)
}
