package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"interviewassist/core/internal/evaluation"
	"interviewassist/core/internal/interview"
	"interviewassist/core/internal/llm/offline"
	"interviewassist/core/internal/middleware"
	"interviewassist/core/internal/models"
	"interviewassist/core/internal/prompts"
	"interviewassist/core/internal/questions"
	"interviewassist/core/internal/resilience"
	"interviewassist/core/internal/roster"
	"interviewassist/core/internal/session"
	"interviewassist/core/internal/store"
	"interviewassist/core/internal/summary"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type interviewFixture struct {
	router    *chi.Mux
	scheduler *session.ManualScheduler
	roster    *roster.Roster
}

// newInterviewFixture wires the real services against the offline provider,
// so every AI step takes its fallback path.
func newInterviewFixture(t *testing.T) *interviewFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := roster.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	pm, err := prompts.NewPromptManager()
	if err != nil {
		t.Fatalf("failed to load prompts: %v", err)
	}
	exec := resilience.NewExecutor(offline.New(), resilience.NewRateLimiter(60, time.Minute))
	candidates := roster.New(db, nil)
	scheduler := session.NewManualScheduler()
	orch := interview.New(
		questions.NewService(exec, pm, nil),
		evaluation.NewService(exec, pm, nil),
		summary.NewGenerator(exec, pm, nil),
		candidates,
		store.NewMemorySessionStore(time.Hour),
		interview.WithScheduler(scheduler),
	)

	h := NewInterviewHandler(orch, zap.NewNop())
	ch := NewCandidatesHandler(candidates, zap.NewNop())
	r := chi.NewRouter()
	r.Route("/api/v1/interviews", func(r chi.Router) {
		r.Get("/", h.ListIncompleteHandler)
		r.With(middleware.ValidateRequest[*models.StartInterviewRequest]()).Post("/", h.StartHandler)
		r.Get("/{candidate_id}", h.GetHandler)
		r.Delete("/{candidate_id}", h.ClearHandler)
		r.With(middleware.ValidateRequest[*models.SubmitAnswerRequest]()).Post("/{candidate_id}/answers", h.SubmitAnswerHandler)
		r.Post("/{candidate_id}/pause", h.PauseHandler)
		r.Post("/{candidate_id}/resume", h.ResumeHandler)
		r.Post("/{candidate_id}/restore", h.RestoreHandler)
	})
	r.Get("/api/v1/candidates", ch.ListHandler)
	r.Get("/api/v1/candidates/{candidate_id}", ch.GetHandler)

	return &interviewFixture{router: r, scheduler: scheduler, roster: candidates}
}

func decodeView(t *testing.T, body []byte) interview.View {
	t.Helper()
	var view interview.View
	if err := json.Unmarshal(body, &view); err != nil {
		t.Fatalf("failed to decode view: %v (%s)", err, body)
	}
	return view
}

func TestInterviewFlowOffline(t *testing.T) {
	f := newInterviewFixture(t)

	rec := performRequest(f.router, http.MethodPost, "/api/v1/interviews/",
		`{"name":"Ada Lovelace","email":"ada@example.com","phone":"555-0100"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	view := decodeView(t, rec.Body.Bytes())
	if view.QuestionSource != models.SourceFallback || view.State != session.StateActive {
		t.Fatalf("unexpected start view: %+v", view)
	}
	base := "/api/v1/interviews/" + view.CandidateID

	var last models.SubmitAnswerResponse
	for i := 0; i < models.QuestionsPerInterview; i++ {
		rec = performRequest(f.router, http.MethodPost, base+"/answers",
			`{"answer":"React components use props and state; async API calls go through middleware."}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("answer %d: expected 200, got %d: %s", i+1, rec.Code, rec.Body.String())
		}
		last = models.SubmitAnswerResponse{}
		if err := json.Unmarshal(rec.Body.Bytes(), &last); err != nil {
			t.Fatalf("failed to decode answer response: %v", err)
		}
		if last.Answer.Source != models.SourceFallback {
			t.Fatalf("expected heuristic evaluation, got %s", last.Answer.Source)
		}
		if last.Completed != (i == models.QuestionsPerInterview-1) {
			t.Fatalf("answer %d: unexpected completed=%v", i+1, last.Completed)
		}
		f.scheduler.Advance(interview.DefaultAdvanceDelay)
	}
	if !last.Completed || last.Summary == "" {
		t.Fatalf("expected completion with summary, got %+v", last)
	}

	rec = performRequest(f.router, http.MethodGet, "/api/v1/candidates/"+view.CandidateID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var candidate models.Candidate
	if err := json.Unmarshal(rec.Body.Bytes(), &candidate); err != nil {
		t.Fatalf("failed to decode candidate: %v", err)
	}
	if candidate.Status != models.StatusCompleted || len(candidate.Answers) != 6 || candidate.Summary != last.Summary ||
		candidate.Score != last.FinalScore {
		t.Fatalf("unexpected roster entry: %+v", candidate)
	}

	rec = performRequest(f.router, http.MethodGet, "/api/v1/candidates?status=completed&sort=name", "")
	var list models.CandidatesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if list.Count != 1 || list.Candidates[0].ID != view.CandidateID {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestInterviewHandlerErrors(t *testing.T) {
	f := newInterviewFixture(t)

	rec := performRequest(f.router, http.MethodPost, "/api/v1/interviews/", `{"name":"Ada","email":"ada@example.com"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing phone, got %d", rec.Code)
	}

	rec = performRequest(f.router, http.MethodGet, "/api/v1/interviews/ghost", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec = performRequest(f.router, http.MethodPost, "/api/v1/interviews/ghost/restore", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on restore, got %d", rec.Code)
	}

	rec = performRequest(f.router, http.MethodPost, "/api/v1/interviews/",
		`{"name":"Ada","email":"ada@example.com","phone":"555"}`)
	view := decodeView(t, rec.Body.Bytes())
	base := "/api/v1/interviews/" + view.CandidateID

	if rec = performRequest(f.router, http.MethodPost, base+"/resume", ""); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 resuming an active session, got %d", rec.Code)
	}
	if rec = performRequest(f.router, http.MethodPost, base+"/pause", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on pause, got %d", rec.Code)
	}
	if rec = performRequest(f.router, http.MethodPost, base+"/answers", `{"answer":"x"}`); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 answering while paused, got %d", rec.Code)
	}
	if rec = performRequest(f.router, http.MethodPost, base+"/answers", `{"answer":"  "}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank answer, got %d", rec.Code)
	}

	rec = performRequest(f.router, http.MethodGet, "/api/v1/interviews/", "")
	var incomplete models.IncompleteSessionsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &incomplete); err != nil {
		t.Fatalf("failed to decode incomplete list: %v", err)
	}
	if len(incomplete.CandidateIDs) != 1 || incomplete.CandidateIDs[0] != view.CandidateID {
		t.Fatalf("unexpected incomplete list: %+v", incomplete)
	}

	if rec = performRequest(f.router, http.MethodDelete, base, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 on clear, got %d", rec.Code)
	}
	if rec = performRequest(f.router, http.MethodGet, base, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after clear, got %d", rec.Code)
	}
}

func TestCandidatesHandlerValidation(t *testing.T) {
	f := newInterviewFixture(t)

	if rec := performRequest(f.router, http.MethodGet, "/api/v1/candidates?limit=-1", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative limit, got %d", rec.Code)
	}
	if rec := performRequest(f.router, http.MethodGet, "/api/v1/candidates?status=archived", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", rec.Code)
	}
	if rec := performRequest(f.router, http.MethodGet, "/api/v1/candidates/ghost", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec := performRequest(f.router, http.MethodGet, "/api/v1/candidates", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var list models.CandidatesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if list.Count != 0 || list.Candidates == nil {
		t.Fatalf("expected empty non-nil list, got %+v", list)
	}
}
