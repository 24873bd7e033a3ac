// Package session holds the lifecycle of one candidate's interview. The
// machine has no clock; a Countdown (or any caller) drives Tick.
package session

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"interviewassist/core/internal/metrics"
	"interviewassist/core/internal/models"
)

type State string

const (
	StateUninitialized State = "uninitialized"
	StateActive        State = "active"
	StatePaused        State = "paused"
	StateCompleted     State = "completed"
)

var (
	ErrSessionExists      = errors.New("session already started")
	ErrMissingCandidateID = errors.New("candidate id is required")
	ErrInvalidQuestionSet = errors.New("invalid question set")
	ErrInvalidSnapshot    = errors.New("invalid session snapshot")
)

// Machine is safe for concurrent use. Transition methods return false when
// the call was a no-op in the current state.
type Machine struct {
	mu         sync.Mutex
	state      State
	session    *models.InterviewSession
	resume     *models.ResumeData
	incomplete bool
	now        func() time.Time
}

func NewMachine() *Machine {
	return &Machine{
		state: StateUninitialized,
		now:   time.Now,
	}
}

// Start moves Uninitialized to Active on the first question.
func (m *Machine) Start(candidateID string, questions []models.InterviewQuestion) error {
	if strings.TrimSpace(candidateID) == "" {
		return ErrMissingCandidateID
	}
	if err := validateQuestions(questions); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateUninitialized {
		return ErrSessionExists
	}

	qs := make([]models.InterviewQuestion, len(questions))
	copy(qs, questions)
	m.session = &models.InterviewSession{
		CandidateID:          candidateID,
		Questions:            qs,
		CurrentQuestionIndex: 0,
		TotalQuestions:       len(qs),
		TimeRemaining:        qs[0].TimeLimit,
		IsActive:             true,
		IsPaused:             false,
		StartedAt:            m.now(),
	}
	m.incomplete = true
	m.transition(StateActive)
	return nil
}

func (m *Machine) Pause() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateActive {
		return false
	}
	m.session.IsPaused = true
	m.transition(StatePaused)
	return true
}

func (m *Machine) Resume() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StatePaused {
		return false
	}
	m.session.IsPaused = false
	m.transition(StateActive)
	return true
}

// Tick sets the remaining time, clamped at zero. Ignored unless Active.
func (m *Machine) Tick(remaining int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateActive {
		return false
	}
	m.session.TimeRemaining = max(remaining, 0)
	return true
}

// Decrement takes one second off the timer and returns what is left. It
// reports false, leaving the timer alone, unless Active.
func (m *Machine) Decrement() (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateActive {
		return 0, false
	}
	m.session.TimeRemaining = max(m.session.TimeRemaining-1, 0)
	return m.session.TimeRemaining, true
}

// Advance moves to the next question and resets the timer. At the last
// question it is a no-op; the caller completes instead.
func (m *Machine) Advance() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateActive || m.session.CurrentQuestionIndex >= m.session.TotalQuestions-1 {
		return false
	}
	m.session.CurrentQuestionIndex++
	m.session.TimeRemaining = m.session.Questions[m.session.CurrentQuestionIndex].TimeLimit
	return true
}

func (m *Machine) Complete() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateActive {
		return false
	}
	m.session.IsActive = false
	m.session.IsPaused = false
	m.incomplete = false
	m.transition(StateCompleted)
	return true
}

// Clear drops the session and any resume data from any state.
func (m *Machine) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	m.resume = nil
	m.incomplete = false
	if m.state != StateUninitialized {
		m.transition(StateUninitialized)
	}
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Session returns a copy of the current session, nil when Uninitialized.
func (m *Machine) Session() *models.InterviewSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copySession(m.session)
}

func (m *Machine) CurrentQuestion() (models.InterviewQuestion, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return models.InterviewQuestion{}, false
	}
	return m.session.Questions[m.session.CurrentQuestionIndex], true
}

func (m *Machine) TimeRemaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return 0
	}
	return m.session.TimeRemaining
}

// IsLastQuestion reports whether the cursor is on the final question.
func (m *Machine) IsLastQuestion() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session != nil && m.session.CurrentQuestionIndex == m.session.TotalQuestions-1
}

// Progress is the rounded percentage of questions already passed; 100 once
// completed.
func (m *Machine) Progress() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil || m.session.TotalQuestions == 0 {
		return 0
	}
	if m.state == StateCompleted {
		return 100
	}
	return int(math.Round(float64(m.session.CurrentQuestionIndex) / float64(m.session.TotalQuestions) * 100))
}

func (m *Machine) HasIncompleteSession() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.incomplete
}

func (m *Machine) SetResumeData(resume *models.ResumeData) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if resume == nil {
		m.resume = nil
		return
	}
	r := *resume
	m.resume = &r
}

func (m *Machine) ResumeData() *models.ResumeData {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resume == nil {
		return nil
	}
	r := *m.resume
	return &r
}

// Snapshot captures the persistable state. The resume file handle is never
// included.
func (m *Machine) Snapshot() models.SessionSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := models.SessionSnapshot{
		Session:              copySession(m.session),
		HasIncompleteSession: m.incomplete,
	}
	if m.resume != nil {
		r := *m.resume
		r.File = nil
		snap.ResumeData = &r
	}
	return snap
}

// Restore rehydrates an Uninitialized machine, keeping cursor and remaining
// time exactly as persisted.
func (m *Machine) Restore(snap models.SessionSnapshot) error {
	state := StateUninitialized
	if s := snap.Session; s != nil {
		if s.CandidateID == "" {
			return fmt.Errorf("%w: %v", ErrInvalidSnapshot, ErrMissingCandidateID)
		}
		if err := validateQuestions(s.Questions); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
		}
		if s.CurrentQuestionIndex < 0 || s.CurrentQuestionIndex >= len(s.Questions) || s.TimeRemaining < 0 {
			return fmt.Errorf("%w: cursor out of range", ErrInvalidSnapshot)
		}
		switch {
		case !s.IsActive:
			state = StateCompleted
		case s.IsPaused:
			state = StatePaused
		default:
			state = StateActive
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateUninitialized {
		return ErrSessionExists
	}
	m.session = copySession(snap.Session)
	if m.session != nil {
		m.session.TotalQuestions = len(m.session.Questions)
	}
	m.incomplete = snap.HasIncompleteSession && state != StateCompleted
	m.resume = nil
	if snap.ResumeData != nil {
		r := *snap.ResumeData
		r.File = nil
		m.resume = &r
	}
	if state != StateUninitialized {
		m.transition(state)
	}
	return nil
}

// transition records the new state. Caller holds mu.
func (m *Machine) transition(to State) {
	m.state = to
	metrics.IncSessionTransition(string(to))
}

func validateQuestions(questions []models.InterviewQuestion) error {
	if len(questions) != models.QuestionsPerInterview {
		return fmt.Errorf("%w: expected %d questions, got %d", ErrInvalidQuestionSet, models.QuestionsPerInterview, len(questions))
	}
	for i, q := range questions {
		if strings.TrimSpace(q.Question) == "" || !q.Difficulty.Valid() || q.TimeLimit <= 0 {
			return fmt.Errorf("%w: malformed question at index %d", ErrInvalidQuestionSet, i)
		}
	}
	return nil
}

func copySession(s *models.InterviewSession) *models.InterviewSession {
	if s == nil {
		return nil
	}
	c := *s
	c.Questions = make([]models.InterviewQuestion, len(s.Questions))
	copy(c.Questions, s.Questions)
	return &c
}
