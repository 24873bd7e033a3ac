// Package roster is the interviewer-facing list of candidates (the
// "candidates" namespace) with their answers, scores and summaries.
package roster

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"interviewassist/core/internal/models"
	"interviewassist/core/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrCandidateNotFound = errors.New("candidate not found")
	ErrInvalidStatus     = errors.New("invalid candidate status")
)

const (
	SortByScore = "score"
	SortByName  = "name"
	SortByDate  = "date"
)

type Roster struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

func New(db *gorm.DB, logger *zap.Logger) *Roster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Roster{db: db, logger: logger, now: time.Now}
}

// Create inserts a candidate, assigning an id and pending status when unset.
func (r *Roster) Create(ctx context.Context, candidate *models.Candidate) error {
	if candidate.ID == "" {
		candidate.ID = uuid.NewString()
	}
	if candidate.Status == "" {
		candidate.Status = models.StatusPending
	}
	if !validStatus(candidate.Status) {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, candidate.Status)
	}
	if candidate.CreatedAt.IsZero() {
		candidate.CreatedAt = r.now()
	}

	if err := r.db.WithContext(ctx).Create(candidate).Error; err != nil {
		return fmt.Errorf("failed to create candidate: %w", err)
	}
	r.logger.Info("Candidate created", zap.String("candidate_id", candidate.ID), zap.String("status", candidate.Status))
	return nil
}

// Get loads a candidate with answers in submission order.
func (r *Roster) Get(ctx context.Context, id string) (*models.Candidate, error) {
	var candidate models.Candidate
	err := r.db.WithContext(ctx).
		Preload("Answers", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&candidate, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCandidateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get candidate %s: %w", id, err)
	}
	return &candidate, nil
}

// AddAnswer appends an evaluated answer; a pending candidate becomes in-progress.
func (r *Roster) AddAnswer(ctx context.Context, id string, answer *models.Answer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var candidate models.Candidate
		if err := tx.Select("id", "status").First(&candidate, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCandidateNotFound
			}
			return fmt.Errorf("failed to load candidate %s: %w", id, err)
		}

		answer.ID = 0
		answer.CandidateID = id
		if err := tx.Create(answer).Error; err != nil {
			return fmt.Errorf("failed to store answer: %w", err)
		}

		if candidate.Status == models.StatusPending {
			if err := tx.Model(&models.Candidate{}).Where("id = ?", id).
				Update("status", models.StatusInProgress).Error; err != nil {
				return fmt.Errorf("failed to update candidate status: %w", err)
			}
		}
		return nil
	})
}

// Complete records the final score and summary.
func (r *Roster) Complete(ctx context.Context, id string, score int, summary string) error {
	now := r.now()
	result := r.db.WithContext(ctx).Model(&models.Candidate{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       models.StatusCompleted,
			"score":        models.ClampScore(float64(score)),
			"summary":      summary,
			"completed_at": now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to complete candidate %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCandidateNotFound
	}
	r.logger.Info("Candidate completed", zap.String("candidate_id", id), zap.Int("score", score))
	return nil
}

// List filters and sorts the roster the way the interviewer dashboard does:
// score descending by default, name ascending, or newest first.
func (r *Roster) List(ctx context.Context, filter models.CandidateFilter) ([]models.Candidate, error) {
	query := r.db.WithContext(ctx).Model(&models.Candidate{})

	if search := utils.NormalizeSearch(filter.Search); search != "" {
		like := "%" + escapeLike(search) + "%"
		query = query.Where("LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(email) LIKE ? ESCAPE '\\'", like, like)
	}

	status := utils.NormalizeStatus(filter.Status)
	if status != "" && status != "all" {
		if !validStatus(status) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, filter.Status)
		}
		query = query.Where("status = ?", status)
	}

	switch strings.ToLower(filter.SortBy) {
	case SortByName:
		query = query.Order("LOWER(name) ASC").Order("created_at DESC")
	case SortByDate:
		query = query.Order("created_at DESC")
	default:
		query = query.Order("score DESC").Order("created_at DESC")
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var candidates []models.Candidate
	if err := query.Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	return candidates, nil
}

func validStatus(status string) bool {
	for _, s := range models.ValidStatusesList() {
		if s == status {
			return true
		}
	}
	return false
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Ping checks the database connection for readiness probes.
func (r *Roster) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
