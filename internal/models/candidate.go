package models

import (
	"time"

	"gorm.io/datatypes"
)

// Candidate is one entry of the interviewer's roster.
type Candidate struct {
	ID          string     `gorm:"primaryKey;size:64" json:"id"`
	Name        string     `gorm:"not null;index" json:"name"`
	Email       string     `gorm:"not null;index" json:"email"`
	Phone       string     `json:"phone"`
	Score       int        `gorm:"not null;default:0;index" json:"score"`
	Status      string     `gorm:"not null;default:pending;index" json:"status"` // "pending", "in-progress", "completed"
	Summary     string     `gorm:"type:text" json:"summary"`
	Answers     []Answer   `gorm:"foreignKey:CandidateID;constraint:OnDelete:CASCADE" json:"answers"`
	CreatedAt   time.Time  `gorm:"not null;index" json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Answer is a candidate's evaluated response to one question.
type Answer struct {
	ID           uint                        `gorm:"primaryKey" json:"-"`
	CandidateID  string                      `gorm:"not null;index;size:64" json:"-"`
	QuestionID   string                      `gorm:"not null" json:"questionId"`
	Question     string                      `gorm:"type:text;not null" json:"question"`
	Answer       string                      `gorm:"type:text" json:"answer"`
	Difficulty   Difficulty                  `gorm:"not null" json:"difficulty"`
	TimeLimit    int                         `gorm:"not null" json:"timeLimit"`
	TimeSpent    int                         `gorm:"not null" json:"timeSpent"`
	Score        int                         `gorm:"not null" json:"aiScore"`
	Feedback     string                      `gorm:"type:text" json:"feedback"`
	Strengths    datatypes.JSONSlice[string] `json:"strengths"`
	Improvements datatypes.JSONSlice[string] `json:"improvements"`
	Source       string                      `json:"source"`
	EvaluatedAt  time.Time                   `json:"evaluatedAt"`
}

// CandidateFilter mirrors the interviewer dashboard controls.
type CandidateFilter struct {
	Search string // matched against name and email
	Status string // "" or "all" for no filter
	SortBy string // "score" (default), "name", "date"
	Limit  int
}
