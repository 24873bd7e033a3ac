package session

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"interviewassist/core/internal/models"
)

func canonicalQuestions() []models.InterviewQuestion {
	return []models.InterviewQuestion{
		{ID: "fallback_q1", Question: "useState vs useEffect?", Difficulty: models.DifficultyEasy, TimeLimit: 20},
		{ID: "fallback_q2", Question: "Props drilling?", Difficulty: models.DifficultyEasy, TimeLimit: 20},
		{ID: "fallback_q3", Question: "JWT in Express?", Difficulty: models.DifficultyMedium, TimeLimit: 60},
		{ID: "fallback_q4", Question: "React performance?", Difficulty: models.DifficultyMedium, TimeLimit: 60},
		{ID: "fallback_q5", Question: "File upload system?", Difficulty: models.DifficultyHard, TimeLimit: 120},
		{ID: "fallback_q6", Question: "Real-time features?", Difficulty: models.DifficultyHard, TimeLimit: 120},
	}
}

func startedMachine(t *testing.T) *Machine {
	t.Helper()
	m := NewMachine()
	if err := m.Start("cand-1", canonicalQuestions()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	return m
}

func TestStartInitializesSession(t *testing.T) {
	m := startedMachine(t)

	if m.State() != StateActive {
		t.Fatalf("expected active, got %s", m.State())
	}
	s := m.Session()
	if s.CurrentQuestionIndex != 0 || s.TimeRemaining != 20 || s.TotalQuestions != 6 || !s.IsActive || s.IsPaused {
		t.Fatalf("unexpected session: %+v", s)
	}
	if !m.HasIncompleteSession() {
		t.Fatal("start must mark the session as incomplete")
	}
	if err := m.Start("cand-2", canonicalQuestions()); !errors.Is(err, ErrSessionExists) {
		t.Fatalf("expected ErrSessionExists, got %v", err)
	}
}

func TestStartValidation(t *testing.T) {
	m := NewMachine()
	if err := m.Start(" ", canonicalQuestions()); !errors.Is(err, ErrMissingCandidateID) {
		t.Fatalf("expected ErrMissingCandidateID, got %v", err)
	}
	if err := m.Start("cand-1", canonicalQuestions()[:5]); !errors.Is(err, ErrInvalidQuestionSet) {
		t.Fatalf("expected ErrInvalidQuestionSet, got %v", err)
	}
	bad := canonicalQuestions()
	bad[3].Difficulty = "expert"
	if err := m.Start("cand-1", bad); !errors.Is(err, ErrInvalidQuestionSet) {
		t.Fatalf("expected ErrInvalidQuestionSet, got %v", err)
	}
	if m.State() != StateUninitialized {
		t.Fatalf("failed start must not change state, got %s", m.State())
	}
}

func TestFullRunAdvanceAndComplete(t *testing.T) {
	m := startedMachine(t)

	for i := 1; i <= 5; i++ {
		if !m.Advance() {
			t.Fatalf("advance %d should succeed", i)
		}
		q, _ := m.CurrentQuestion()
		if m.TimeRemaining() != q.TimeLimit {
			t.Fatalf("timer not reset on advance %d", i)
		}
	}
	if !m.IsLastQuestion() {
		t.Fatal("expected to be on the last question")
	}

	if !m.Complete() {
		t.Fatal("complete should succeed from active")
	}
	if m.State() != StateCompleted {
		t.Fatalf("expected completed, got %s", m.State())
	}
	s := m.Session()
	if s.CurrentQuestionIndex != 5 || s.IsActive {
		t.Fatalf("unexpected final session: %+v", s)
	}
	if m.HasIncompleteSession() {
		t.Fatal("incomplete flag must be cleared")
	}

	if m.Advance() {
		t.Fatal("sixth advance must be a no-op")
	}
	if m.Complete() {
		t.Fatal("second complete must be a no-op")
	}
	if m.Session().CurrentQuestionIndex != 5 || m.Progress() != 100 {
		t.Fatalf("no-op calls changed state: %+v", m.Session())
	}
}

func TestAdvanceAtLastQuestionIsNoop(t *testing.T) {
	m := startedMachine(t)
	for i := 0; i < 5; i++ {
		m.Advance()
	}
	m.Tick(7)
	if m.Advance() {
		t.Fatal("advance at last question must be a no-op")
	}
	if m.TimeRemaining() != 7 {
		t.Fatalf("no-op advance must not reset timer, got %d", m.TimeRemaining())
	}
}

func TestTickWhilePausedIsIgnored(t *testing.T) {
	m := startedMachine(t)
	m.Tick(15)

	if !m.Pause() {
		t.Fatal("pause should succeed from active")
	}
	if m.Tick(10) {
		t.Fatal("tick while paused must be ignored")
	}
	if m.TimeRemaining() != 15 {
		t.Fatalf("expected 15, got %d", m.TimeRemaining())
	}
	if m.Advance() {
		t.Fatal("advance while paused must be a no-op")
	}
	if m.Complete() {
		t.Fatal("complete while paused must be a no-op")
	}

	if !m.Resume() {
		t.Fatal("resume should succeed from paused")
	}
	if m.Tick(-3) != true || m.TimeRemaining() != 0 {
		t.Fatalf("tick must clamp to zero, got %d", m.TimeRemaining())
	}
}

func TestDecrementOnlyWhileActive(t *testing.T) {
	m := startedMachine(t)

	if remaining, ok := m.Decrement(); !ok || remaining != 19 {
		t.Fatalf("expected 19 after decrement, got %d ok=%v", remaining, ok)
	}
	m.Pause()
	if _, ok := m.Decrement(); ok || m.TimeRemaining() != 19 {
		t.Fatalf("decrement while paused must be a no-op, remaining=%d", m.TimeRemaining())
	}
	m.Resume()
	m.Tick(0)
	if remaining, ok := m.Decrement(); !ok || remaining != 0 {
		t.Fatalf("decrement must clamp at zero, got %d", remaining)
	}
}

func TestPauseResumeNoops(t *testing.T) {
	m := NewMachine()
	if m.Pause() || m.Resume() || m.Tick(3) || m.Advance() || m.Complete() {
		t.Fatal("transitions from uninitialized must be no-ops")
	}

	m = startedMachine(t)
	if m.Resume() {
		t.Fatal("resume from active must be a no-op")
	}
	m.Pause()
	if m.Pause() {
		t.Fatal("second pause must be a no-op")
	}
}

func TestClearFromAnyState(t *testing.T) {
	m := startedMachine(t)
	m.SetResumeData(&models.ResumeData{Name: "Ada", File: strings.NewReader("pdf")})
	m.Pause()

	m.Clear()

	if m.State() != StateUninitialized || m.Session() != nil || m.ResumeData() != nil || m.HasIncompleteSession() {
		t.Fatal("clear must discard everything")
	}
	if err := m.Start("cand-2", canonicalQuestions()); err != nil {
		t.Fatalf("start after clear should succeed: %v", err)
	}
}

func TestProgress(t *testing.T) {
	m := startedMachine(t)
	if m.Progress() != 0 {
		t.Fatalf("expected 0, got %d", m.Progress())
	}
	m.Advance()
	m.Advance()
	if m.Progress() != 33 {
		t.Fatalf("expected 33, got %d", m.Progress())
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	m := startedMachine(t)
	m.SetResumeData(&models.ResumeData{Name: "Ada", Email: "ada@example.com", Phone: "555", File: strings.NewReader("pdf")})
	m.Advance()
	m.Advance()
	m.Tick(42)
	m.Pause()

	raw, err := json.Marshal(m.Snapshot())
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	var snap models.SessionSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}

	restored := NewMachine()
	if err := restored.Restore(snap); err != nil {
		t.Fatalf("Restore returned error: %v", err)
	}
	if restored.State() != StatePaused {
		t.Fatalf("expected paused, got %s", restored.State())
	}
	s := restored.Session()
	if s.CurrentQuestionIndex != 2 || s.TimeRemaining != 42 {
		t.Fatalf("cursor not preserved: %+v", s)
	}
	if !restored.HasIncompleteSession() {
		t.Fatal("incomplete flag not preserved")
	}
	resume := restored.ResumeData()
	if resume == nil || resume.Name != "Ada" || resume.File != nil {
		t.Fatalf("resume data not restored correctly: %+v", resume)
	}

	if err := restored.Restore(snap); !errors.Is(err, ErrSessionExists) {
		t.Fatalf("restore into a live machine must fail, got %v", err)
	}
}

func TestRestoreRejectsCorruptSnapshot(t *testing.T) {
	m := startedMachine(t)
	snap := m.Snapshot()
	snap.Session.CurrentQuestionIndex = 9

	if err := NewMachine().Restore(snap); !errors.Is(err, ErrInvalidSnapshot) {
		t.Fatalf("expected ErrInvalidSnapshot, got %v", err)
	}
}

func TestRestoreCompletedAndEmpty(t *testing.T) {
	m := startedMachine(t)
	m.Complete()

	restored := NewMachine()
	if err := restored.Restore(m.Snapshot()); err != nil {
		t.Fatalf("Restore returned error: %v", err)
	}
	if restored.State() != StateCompleted || restored.HasIncompleteSession() {
		t.Fatalf("expected completed without incomplete flag, got %s", restored.State())
	}

	empty := NewMachine()
	if err := empty.Restore(models.SessionSnapshot{}); err != nil || empty.State() != StateUninitialized {
		t.Fatalf("empty snapshot should restore to uninitialized, got %s (%v)", empty.State(), err)
	}
}

func TestSessionReturnsCopy(t *testing.T) {
	m := startedMachine(t)
	s := m.Session()
	s.Questions[0].Question = "mutated"
	s.CurrentQuestionIndex = 4
	if q, _ := m.CurrentQuestion(); q.Question == "mutated" || m.Session().CurrentQuestionIndex != 0 {
		t.Fatal("Session must return an independent copy")
	}
}
