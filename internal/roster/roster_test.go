package roster

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"interviewassist/core/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestRoster(t *testing.T) *Roster {
	t.Helper()

	dsn := fmt.Sprintf("file:%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return New(db, nil)
}

func seedCandidate(t *testing.T, r *Roster, name, email, status string, score int, created time.Time) *models.Candidate {
	t.Helper()
	c := &models.Candidate{Name: name, Email: email, Phone: "555-0100", Status: status, Score: score, CreatedAt: created}
	if err := r.Create(context.Background(), c); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	return c
}

func TestCreateAssignsDefaults(t *testing.T) {
	r := newTestRoster(t)
	fixed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	c := &models.Candidate{Name: "Ada", Email: "ada@example.com"}
	if err := r.Create(context.Background(), c); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if c.ID == "" {
		t.Fatal("expected generated id")
	}
	if c.Status != models.StatusPending {
		t.Fatalf("expected pending status, got %s", c.Status)
	}
	if !c.CreatedAt.Equal(fixed) {
		t.Fatalf("expected created at %v, got %v", fixed, c.CreatedAt)
	}
}

func TestCreateRejectsUnknownStatus(t *testing.T) {
	r := newTestRoster(t)
	err := r.Create(context.Background(), &models.Candidate{Name: "x", Email: "x@y.z", Status: "archived"})
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestGetMissingCandidate(t *testing.T) {
	r := newTestRoster(t)
	if _, err := r.Get(context.Background(), "nope"); !errors.Is(err, ErrCandidateNotFound) {
		t.Fatalf("expected ErrCandidateNotFound, got %v", err)
	}
}

func TestAddAnswerMovesPendingToInProgress(t *testing.T) {
	r := newTestRoster(t)
	ctx := context.Background()
	c := seedCandidate(t, r, "Grace", "grace@example.com", "", 0, time.Now())

	for i, score := range []int{70, 90} {
		answer := &models.Answer{
			QuestionID:   fmt.Sprintf("q%d", i+1),
			Question:     "What is a closure?",
			Answer:       "A function with captured scope",
			Difficulty:   models.DifficultyEasy,
			TimeLimit:    20,
			TimeSpent:    12,
			Score:        score,
			Strengths:    []string{"concise"},
			Improvements: []string{"add an example"},
			Source:       models.SourceAI,
			EvaluatedAt:  time.Now(),
		}
		if err := r.AddAnswer(ctx, c.ID, answer); err != nil {
			t.Fatalf("AddAnswer returned error: %v", err)
		}
	}

	stored, err := r.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if stored.Status != models.StatusInProgress {
		t.Fatalf("expected in-progress, got %s", stored.Status)
	}
	if len(stored.Answers) != 2 {
		t.Fatalf("expected 2 answers, got %d", len(stored.Answers))
	}
	if stored.Answers[0].QuestionID != "q1" || stored.Answers[1].Score != 90 {
		t.Fatalf("answers out of order: %+v", stored.Answers)
	}
	if len(stored.Answers[0].Strengths) != 1 || stored.Answers[0].Strengths[0] != "concise" {
		t.Fatalf("strengths not round-tripped: %+v", stored.Answers[0].Strengths)
	}
}

func TestAddAnswerUnknownCandidate(t *testing.T) {
	r := newTestRoster(t)
	err := r.AddAnswer(context.Background(), "ghost", &models.Answer{QuestionID: "q1", Question: "?", Difficulty: models.DifficultyEasy})
	if !errors.Is(err, ErrCandidateNotFound) {
		t.Fatalf("expected ErrCandidateNotFound, got %v", err)
	}
}

func TestCompleteRecordsScoreAndSummary(t *testing.T) {
	r := newTestRoster(t)
	ctx := context.Background()
	c := seedCandidate(t, r, "Linus", "linus@example.com", models.StatusInProgress, 0, time.Now())

	if err := r.Complete(ctx, c.ID, 82, "Strong candidate"); err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}

	stored, err := r.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if stored.Status != models.StatusCompleted || stored.Score != 82 || stored.Summary != "Strong candidate" {
		t.Fatalf("unexpected candidate after completion: %+v", stored)
	}
	if stored.CompletedAt == nil {
		t.Fatal("expected completion timestamp")
	}

	if err := r.Complete(ctx, "ghost", 50, ""); !errors.Is(err, ErrCandidateNotFound) {
		t.Fatalf("expected ErrCandidateNotFound, got %v", err)
	}
}

func TestListFiltersAndSorts(t *testing.T) {
	r := newTestRoster(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	seedCandidate(t, r, "Charlie", "charlie@example.com", models.StatusCompleted, 65, base)
	seedCandidate(t, r, "alice", "alice@corp.io", models.StatusCompleted, 90, base.Add(time.Hour))
	seedCandidate(t, r, "Bob", "bob@example.com", models.StatusInProgress, 0, base.Add(2*time.Hour))

	names := func(cs []models.Candidate) []string {
		out := make([]string, len(cs))
		for i, c := range cs {
			out[i] = c.Name
		}
		return out
	}

	cases := []struct {
		name   string
		filter models.CandidateFilter
		want   []string
	}{
		{"default score desc", models.CandidateFilter{}, []string{"alice", "Charlie", "Bob"}},
		{"by name", models.CandidateFilter{SortBy: "name"}, []string{"alice", "Bob", "Charlie"}},
		{"by date", models.CandidateFilter{SortBy: "date"}, []string{"Bob", "alice", "Charlie"}},
		{"status", models.CandidateFilter{Status: "In Progress"}, []string{"Bob"}},
		{"all status", models.CandidateFilter{Status: "all"}, []string{"alice", "Charlie", "Bob"}},
		{"search email", models.CandidateFilter{Search: "  EXAMPLE.com "}, []string{"Charlie", "Bob"}},
		{"search name", models.CandidateFilter{Search: "ALI"}, []string{"alice"}},
		{"limit", models.CandidateFilter{Limit: 1}, []string{"alice"}},
		{"wildcard literal", models.CandidateFilter{Search: "%"}, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.List(ctx, tc.filter)
			if err != nil {
				t.Fatalf("List returned error: %v", err)
			}
			gotNames := names(got)
			if len(gotNames) != len(tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, gotNames)
			}
			for i := range tc.want {
				if gotNames[i] != tc.want[i] {
					t.Fatalf("expected %v, got %v", tc.want, gotNames)
				}
			}
		})
	}
}

func TestListRejectsUnknownStatus(t *testing.T) {
	r := newTestRoster(t)
	if _, err := r.List(context.Background(), models.CandidateFilter{Status: "archived"}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestOpenDatabaseSQLite(t *testing.T) {
	db, err := OpenDatabase(DatabaseConfig{Driver: DriverSQLite, DSN: filepath.Join(t.TempDir(), "roster.db")})
	if err != nil {
		t.Fatalf("OpenDatabase returned error: %v", err)
	}
	if !db.Migrator().HasTable(&models.Candidate{}) {
		t.Fatal("expected candidates table to be migrated")
	}

	if _, err := OpenDatabase(DatabaseConfig{Driver: "mysql"}); err == nil {
		t.Fatal("expected unsupported driver error")
	}
}
