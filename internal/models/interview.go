package models

import (
	"io"
	"time"
)

type InterviewQuestion struct {
	ID         string     `json:"id"`
	Question   string     `json:"question"`
	Difficulty Difficulty `json:"difficulty"`
	TimeLimit  int        `json:"timeLimit"` // seconds
}

// QuestionSet is the output of question generation, tagged with where it came from.
type QuestionSet struct {
	Questions   []InterviewQuestion `json:"questions"`
	Source      string              `json:"source"` // "ai" | "fallback"
	GeneratedAt time.Time           `json:"generatedAt"`
}

// DifficultyCounts tallies questions per difficulty.
func DifficultyCounts(questions []InterviewQuestion) map[Difficulty]int {
	counts := make(map[Difficulty]int, 3)
	for _, q := range questions {
		counts[q.Difficulty]++
	}
	return counts
}

// Evaluation is the scored result for a single answer.
type Evaluation struct {
	Score        int       `json:"score"` // 0-100
	Feedback     string    `json:"feedback"`
	Strengths    []string  `json:"strengths"`
	Improvements []string  `json:"improvements"`
	EvaluatedAt  time.Time `json:"evaluatedAt"`
	Source       string    `json:"source"`
}

type InterviewSession struct {
	CandidateID          string              `json:"candidateId"`
	Questions            []InterviewQuestion `json:"questions"`
	CurrentQuestionIndex int                 `json:"currentQuestionIndex"`
	TotalQuestions       int                 `json:"totalQuestions"`
	TimeRemaining        int                 `json:"timeRemaining"` // seconds
	IsActive             bool                `json:"isActive"`
	IsPaused             bool                `json:"isPaused"`
	StartedAt            time.Time           `json:"startedAt"`
}

// ResumeData is what the external resume extractor hands back, best effort.
type ResumeData struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	ExtractedText string `json:"extractedText"`

	// File is the uploaded source; it does not survive a reload.
	File io.Reader `json:"-"`
}

// MissingFields lists contact fields the candidate still has to fill in.
func (r *ResumeData) MissingFields() []string {
	if r == nil {
		return []string{"name", "email", "phone"}
	}
	var missing []string
	if isBlank(r.Name) {
		missing = append(missing, "name")
	}
	if isBlank(r.Email) {
		missing = append(missing, "email")
	}
	if isBlank(r.Phone) {
		missing = append(missing, "phone")
	}
	return missing
}

// SessionSnapshot is the persisted shape of the interview namespace.
type SessionSnapshot struct {
	Session              *InterviewSession `json:"currentSession"`
	HasIncompleteSession bool              `json:"hasIncompleteSession"`
	ResumeData           *ResumeData       `json:"resumeData"`
}
