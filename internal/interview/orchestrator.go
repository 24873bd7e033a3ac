// Package interview runs a candidate's interview end to end: it generates the
// question set, drives the session machine and countdown, scores answers and
// writes the result to the roster.
package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"interviewassist/core/internal/models"
	"interviewassist/core/internal/session"
	"interviewassist/core/internal/store"
	"interviewassist/core/internal/summary"

	"go.uber.org/zap"
)

const DefaultAdvanceDelay = 2 * time.Second

var (
	ErrSessionNotFound      = errors.New("interview session not found")
	ErrEvaluationInProgress = errors.New("an answer is already being evaluated")
	ErrNotActive            = errors.New("interview is not active")
	ErrInvalidTransition    = errors.New("invalid interview transition")
	ErrIncompleteResume     = errors.New("resume is missing contact fields")
)

type QuestionSource interface {
	GenerateWithFallback(ctx context.Context) models.QuestionSet
}

type AnswerEvaluator interface {
	EvaluateWithFallback(ctx context.Context, question models.InterviewQuestion, answer string, timeSpent int) models.Evaluation
}

type Summarizer interface {
	Summarize(ctx context.Context, candidateName string, answers []models.Answer) string
}

// CandidateRoster is satisfied by *roster.Roster.
type CandidateRoster interface {
	Create(ctx context.Context, candidate *models.Candidate) error
	Get(ctx context.Context, id string) (*models.Candidate, error)
	AddAnswer(ctx context.Context, id string, answer *models.Answer) error
	Complete(ctx context.Context, id string, score int, summary string) error
}

// Submission is the outcome of one answer. Completed is set when it was the
// last answer and the summary has been written.
type Submission struct {
	Answer     models.Answer `json:"answer"`
	Completed  bool          `json:"completed"`
	FinalScore int           `json:"finalScore,omitempty"`
	Summary    string        `json:"summary,omitempty"`
}

// View is what callers see of a running interview.
type View struct {
	CandidateID    string                   `json:"candidateId"`
	State          session.State            `json:"state"`
	Session        *models.InterviewSession `json:"session"`
	Progress       int                      `json:"progress"`
	QuestionSource string                   `json:"questionSource,omitempty"`
	Evaluating     bool                     `json:"evaluating"`
	Answers        []models.Answer          `json:"answers"`
	FinalScore     int                      `json:"finalScore"`
	Summary        string                   `json:"summary,omitempty"`
}

type run struct {
	mu         sync.Mutex
	name       string
	machine    *session.Machine
	countdown  *session.Countdown
	source     string
	evaluating bool
	advance    session.Task
	answers    []models.Answer
	finalScore int
	summary    string
}

type Option func(*Orchestrator)

func WithScheduler(s session.Scheduler) Option {
	return func(o *Orchestrator) { o.scheduler = s }
}

func WithAdvanceDelay(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d >= 0 {
			o.advanceDelay = d
		}
	}
}

func WithTickInterval(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.tickInterval = d
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

type Orchestrator struct {
	questions  QuestionSource
	evaluator  AnswerEvaluator
	summarizer Summarizer
	roster     CandidateRoster
	store      store.SessionStore

	scheduler    session.Scheduler
	advanceDelay time.Duration
	tickInterval time.Duration
	logger       *zap.Logger

	mu   sync.Mutex
	runs map[string]*run
}

func New(questions QuestionSource, evaluator AnswerEvaluator, summarizer Summarizer,
	roster CandidateRoster, sessions store.SessionStore, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		questions:    questions,
		evaluator:    evaluator,
		summarizer:   summarizer,
		roster:       roster,
		store:        sessions,
		scheduler:    session.TimerScheduler{},
		advanceDelay: DefaultAdvanceDelay,
		tickInterval: time.Second,
		logger:       zap.NewNop(),
		runs:         make(map[string]*run),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Start registers the candidate and begins the first question.
func (o *Orchestrator) Start(ctx context.Context, resume *models.ResumeData) (*View, error) {
	if missing := resume.MissingFields(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrIncompleteResume, strings.Join(missing, ", "))
	}

	set := o.questions.GenerateWithFallback(ctx)

	candidate := &models.Candidate{
		Name:   strings.TrimSpace(resume.Name),
		Email:  strings.TrimSpace(resume.Email),
		Phone:  strings.TrimSpace(resume.Phone),
		Status: models.StatusInProgress,
	}
	if err := o.roster.Create(ctx, candidate); err != nil {
		return nil, fmt.Errorf("failed to register candidate: %w", err)
	}

	machine := session.NewMachine()
	machine.SetResumeData(resume)
	if err := machine.Start(candidate.ID, set.Questions); err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	r := &run{name: candidate.Name, machine: machine, source: set.Source}
	r.countdown = o.newCountdown(candidate.ID, r)

	o.mu.Lock()
	o.runs[candidate.ID] = r
	o.mu.Unlock()

	o.persist(ctx, candidate.ID, r)
	r.countdown.Start()

	o.logger.Info("Interview started",
		zap.String("candidate_id", candidate.ID),
		zap.String("question_source", set.Source))
	return o.view(candidate.ID, r), nil
}

// SubmitAnswer scores the answer to the current question. On the last
// question it also summarizes and completes the interview; otherwise the
// next question follows after the advance delay.
func (o *Orchestrator) SubmitAnswer(ctx context.Context, candidateID, text string) (*Submission, error) {
	r, err := o.lookup(candidateID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if r.evaluating {
		r.mu.Unlock()
		return nil, ErrEvaluationInProgress
	}
	if r.machine.State() != session.StateActive {
		r.mu.Unlock()
		return nil, ErrNotActive
	}
	question, _ := r.machine.CurrentQuestion()
	timeSpent := max(question.TimeLimit-r.machine.TimeRemaining(), 0)
	r.evaluating = true
	r.countdown.Stop()
	r.mu.Unlock()

	eval := o.evaluator.EvaluateWithFallback(ctx, question, text, timeSpent)
	answer := models.Answer{
		QuestionID:   question.ID,
		Question:     question.Question,
		Answer:       text,
		Difficulty:   question.Difficulty,
		TimeLimit:    question.TimeLimit,
		TimeSpent:    timeSpent,
		Score:        eval.Score,
		Feedback:     eval.Feedback,
		Strengths:    eval.Strengths,
		Improvements: eval.Improvements,
		Source:       eval.Source,
		EvaluatedAt:  eval.EvaluatedAt,
	}
	if err := o.roster.AddAnswer(ctx, candidateID, &answer); err != nil {
		o.logger.Warn("Failed to record answer", zap.String("candidate_id", candidateID), zap.Error(err))
	}

	r.mu.Lock()
	if !o.registered(candidateID, r) {
		r.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	r.answers = append(r.answers, answer)
	last := r.machine.IsLastQuestion()
	if !last {
		r.advance = o.scheduler.Schedule(o.advanceDelay, func() { o.advanceTo(candidateID, r) })
	}
	o.persist(ctx, candidateID, r)
	r.mu.Unlock()

	sub := &Submission{Answer: answer}
	if last {
		if err := o.finish(ctx, candidateID, r); err != nil {
			return nil, err
		}
		r.mu.Lock()
		sub.Completed = r.machine.State() == session.StateCompleted
		sub.FinalScore = r.finalScore
		sub.Summary = r.summary
		r.mu.Unlock()
	}
	return sub, nil
}

// finish summarizes and completes the interview. The caller must not hold
// r.mu; r.evaluating stays set until completion.
func (o *Orchestrator) finish(ctx context.Context, candidateID string, r *run) error {
	r.mu.Lock()
	r.evaluating = true
	name := r.name
	answers := make([]models.Answer, len(r.answers))
	copy(answers, r.answers)
	r.mu.Unlock()

	text := o.summarizer.Summarize(ctx, name, answers)
	score := summary.MeanScore(answers)

	r.mu.Lock()
	defer r.mu.Unlock()
	if !o.registered(candidateID, r) {
		return ErrSessionNotFound
	}
	r.summary = text
	r.finalScore = score
	if err := o.roster.Complete(ctx, candidateID, score, text); err != nil {
		o.logger.Warn("Failed to complete candidate", zap.String("candidate_id", candidateID), zap.Error(err))
	}
	r.machine.Complete()
	r.evaluating = false
	o.persist(ctx, candidateID, r)
	o.logger.Info("Interview completed",
		zap.String("candidate_id", candidateID),
		zap.Int("score", score))
	return nil
}

func (o *Orchestrator) advanceTo(candidateID string, r *run) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.advance = nil
	if !o.registered(candidateID, r) {
		return
	}
	r.evaluating = false
	if r.machine.Advance() {
		r.countdown.Start()
	}
	o.persist(context.Background(), candidateID, r)
}

func (o *Orchestrator) expire(candidateID string) {
	o.logger.Info("Time expired, submitting empty answer", zap.String("candidate_id", candidateID))
	if _, err := o.SubmitAnswer(context.Background(), candidateID, ""); err != nil {
		o.logger.Warn("Auto-submit failed", zap.String("candidate_id", candidateID), zap.Error(err))
	}
}

func (o *Orchestrator) Pause(ctx context.Context, candidateID string) (*View, error) {
	r, err := o.lookup(candidateID)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.evaluating {
		return nil, ErrEvaluationInProgress
	}
	if !r.machine.Pause() {
		return nil, fmt.Errorf("%w: cannot pause from %s", ErrInvalidTransition, r.machine.State())
	}
	o.persist(ctx, candidateID, r)
	return o.viewLocked(candidateID, r), nil
}

func (o *Orchestrator) Resume(ctx context.Context, candidateID string) (*View, error) {
	r, err := o.lookup(candidateID)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.machine.Resume() {
		return nil, fmt.Errorf("%w: cannot resume from %s", ErrInvalidTransition, r.machine.State())
	}
	r.countdown.Start()
	o.persist(ctx, candidateID, r)
	return o.viewLocked(candidateID, r), nil
}

func (o *Orchestrator) Get(candidateID string) (*View, error) {
	r, err := o.lookup(candidateID)
	if err != nil {
		return nil, err
	}
	return o.view(candidateID, r), nil
}

// Clear discards the session and its snapshot. The roster entry is kept.
func (o *Orchestrator) Clear(ctx context.Context, candidateID string) error {
	o.mu.Lock()
	r, ok := o.runs[candidateID]
	delete(o.runs, candidateID)
	o.mu.Unlock()

	if ok {
		r.mu.Lock()
		r.countdown.Stop()
		if r.advance != nil {
			r.advance.Cancel()
			r.advance = nil
		}
		r.machine.Clear()
		r.mu.Unlock()
	}

	if err := o.store.Delete(ctx, candidateID); err != nil {
		return fmt.Errorf("failed to delete session snapshot: %w", err)
	}
	return nil
}

// Restore rehydrates a session from its snapshot. An answer that was recorded
// but not yet followed by the advance is honoured.
func (o *Orchestrator) Restore(ctx context.Context, candidateID string) (*View, error) {
	if r, err := o.lookup(candidateID); err == nil {
		return o.view(candidateID, r), nil
	}

	snap, err := o.store.Load(ctx, candidateID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session snapshot: %w", err)
	}

	machine := session.NewMachine()
	if err := machine.Restore(snap); err != nil {
		return nil, err
	}
	if machine.State() == session.StateUninitialized {
		return nil, ErrSessionNotFound
	}

	r := &run{machine: machine}
	if snap.ResumeData != nil {
		r.name = snap.ResumeData.Name
	}
	if candidate, err := o.roster.Get(ctx, candidateID); err == nil {
		r.name = candidate.Name
		r.answers = candidate.Answers
		r.summary = candidate.Summary
		r.finalScore = candidate.Score
	} else {
		o.logger.Warn("Restoring without roster answers", zap.String("candidate_id", candidateID), zap.Error(err))
	}
	r.countdown = o.newCountdown(candidateID, r)

	o.mu.Lock()
	if existing, ok := o.runs[candidateID]; ok {
		o.mu.Unlock()
		return o.view(candidateID, existing), nil
	}
	o.runs[candidateID] = r
	o.mu.Unlock()

	r.mu.Lock()
	pendingFinish := false
	if sess := machine.Session(); sess != nil && machine.State() != session.StateCompleted &&
		len(r.answers) > sess.CurrentQuestionIndex {
		if machine.IsLastQuestion() {
			if machine.State() == session.StatePaused {
				machine.Resume()
			}
			pendingFinish = true
			r.evaluating = true
		} else {
			machine.Advance()
		}
	}
	if !pendingFinish {
		switch machine.State() {
		case session.StateActive, session.StatePaused:
			r.countdown.Start()
		}
	}
	o.persist(ctx, candidateID, r)
	r.mu.Unlock()

	if pendingFinish {
		if err := o.finish(ctx, candidateID, r); err != nil {
			return nil, err
		}
	}

	o.logger.Info("Interview restored",
		zap.String("candidate_id", candidateID),
		zap.String("state", string(machine.State())))
	return o.view(candidateID, r), nil
}

// Incomplete lists candidates with a resumable session.
func (o *Orchestrator) Incomplete(ctx context.Context) ([]string, error) {
	return o.store.ListIncomplete(ctx)
}

// newCountdown drives r's machine. Every tick is persisted so a restored
// session keeps the time it had left.
func (o *Orchestrator) newCountdown(candidateID string, r *run) *session.Countdown {
	return session.NewCountdown(r.machine, o.scheduler, o.tickInterval,
		func(int) { o.persistTick(candidateID, r) },
		func() { o.expire(candidateID) })
}

func (o *Orchestrator) persistTick(candidateID string, r *run) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !o.registered(candidateID, r) {
		return
	}
	o.persist(context.Background(), candidateID, r)
}

func (o *Orchestrator) lookup(candidateID string) (*run, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	r, ok := o.runs[candidateID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return r, nil
}

func (o *Orchestrator) registered(candidateID string, r *run) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.runs[candidateID] == r
}

// persist saves the snapshot; a failed save is logged and the interview goes on.
func (o *Orchestrator) persist(ctx context.Context, candidateID string, r *run) {
	if err := o.store.Save(ctx, candidateID, r.machine.Snapshot()); err != nil {
		o.logger.Warn("Failed to persist session snapshot",
			zap.String("candidate_id", candidateID),
			zap.Error(err))
	}
}

func (o *Orchestrator) view(candidateID string, r *run) *View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return o.viewLocked(candidateID, r)
}

func (o *Orchestrator) viewLocked(candidateID string, r *run) *View {
	answers := make([]models.Answer, len(r.answers))
	copy(answers, r.answers)
	return &View{
		CandidateID:    candidateID,
		State:          r.machine.State(),
		Session:        r.machine.Session(),
		Progress:       r.machine.Progress(),
		QuestionSource: r.source,
		Evaluating:     r.evaluating,
		Answers:        answers,
		FinalScore:     r.finalScore,
		Summary:        r.summary,
	}
}
