package models

import "time"

type QuestionsResponse struct {
	QuestionSet
	RequestID string `json:"request_id"`
}

type EvaluationResponse struct {
	Evaluation
	RequestID string `json:"request_id"`
}

type SummaryResponse struct {
	Summary   string `json:"summary"`
	Score     int    `json:"score"`
	RequestID string `json:"request_id"`
}

type CandidatesResponse struct {
	Candidates []Candidate `json:"candidates"`
	Count      int         `json:"count"`
}

type IncompleteSessionsResponse struct {
	CandidateIDs []string `json:"candidate_ids"`
}

type SubmitAnswerResponse struct {
	Answer     Answer `json:"answer"`
	Completed  bool   `json:"completed"`
	FinalScore int    `json:"final_score,omitempty"`
	Summary    string `json:"summary,omitempty"`
	RequestID  string `json:"request_id"`
}

// ProviderStatus reports the last known health of the text-generation provider.
type ProviderStatus struct {
	Available     bool      `json:"available"`
	Provider      string    `json:"provider"`
	LastErrorKind string    `json:"last_error_kind,omitempty"`
	LastError     string    `json:"last_error,omitempty"`
	LastCheckedAt time.Time `json:"last_checked_at"`
}

// uniform error responses
type ErrorResponse struct {
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
	Details []ValidationErrorDetail `json:"details,omitempty"`
}

func (e *ErrorResponse) Error() string {
	return e.Message
}

// single field validation error
type ValidationErrorDetail struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}
