package models

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// StartInterviewRequest carries the resume extractor output plus anything the
// candidate typed in to fill missing contact fields.
type StartInterviewRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email" validate:"omitempty,email"`
	Phone         string `json:"phone"`
	ExtractedText string `json:"extracted_text"`
	RequestID     string `json:"request_id"`
}

// implements the Validator interface
func (r *StartInterviewRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)

	resume := r.ResumeData()
	if missing := resume.MissingFields(); len(missing) > 0 {
		details := make([]ValidationErrorDetail, 0, len(missing))
		for _, field := range missing {
			details = append(details, ValidationErrorDetail{Field: field, Reason: "required"})
		}
		return &ErrorResponse{
			Code:    "missing_contact_fields",
			Message: "Name, email and phone are required before the interview can start",
			Details: details,
		}
	}

	if err := validate.Struct(r); err != nil {
		return &ErrorResponse{
			Code:    "invalid_email",
			Message: "Email address is not valid",
			Details: []ValidationErrorDetail{{Field: "email", Reason: "email"}},
		}
	}
	return nil
}

func (r *StartInterviewRequest) ResumeData() *ResumeData {
	return &ResumeData{
		Name:          r.Name,
		Email:         r.Email,
		Phone:         r.Phone,
		ExtractedText: r.ExtractedText,
	}
}

// QuestionsRequest asks for a question set. Strict disables the offline
// fallback so provider failures surface to the caller.
type QuestionsRequest struct {
	Strict    bool   `json:"strict"`
	RequestID string `json:"request_id"`
}

func (r *QuestionsRequest) Validate() error {
	return nil
}

type SubmitAnswerRequest struct {
	Answer    string `json:"answer"`
	RequestID string `json:"request_id"`
}

func (r *SubmitAnswerRequest) Validate() error {
	if isBlank(r.Answer) {
		return &ErrorResponse{Code: "missing_answer", Message: "Answer field is required"}
	}
	return nil
}

type EvaluateRequest struct {
	Strict    bool               `json:"strict"`
	Question  *InterviewQuestion `json:"question"`
	Answer    string             `json:"answer"`
	TimeSpent int                `json:"time_spent"`
	RequestID string             `json:"request_id"`
}

func (r *EvaluateRequest) Validate() error {
	if r.Question == nil || isBlank(r.Question.Question) {
		return &ErrorResponse{Code: "missing_question", Message: "Question context is required"}
	}

	difficulty, err := ParseDifficulty(string(r.Question.Difficulty))
	if err != nil {
		return &ErrorResponse{
			Code:    "invalid_difficulty",
			Message: "Difficulty must be one of: " + strings.Join(DifficultiesList(), ", "),
		}
	}
	// the time limit always follows from the difficulty
	r.Question.Difficulty = difficulty
	r.Question.TimeLimit = difficulty.TimeLimit()

	if r.TimeSpent < 0 {
		return &ErrorResponse{Code: "invalid_time_spent", Message: "time_spent must not be negative"}
	}
	return nil
}

type SummaryRequest struct {
	CandidateName string   `json:"candidate_name"`
	Answers       []Answer `json:"answers"`
	RequestID     string   `json:"request_id"`
}

func (r *SummaryRequest) Validate() error {
	if isBlank(r.CandidateName) {
		return &ErrorResponse{Code: "missing_candidate_name", Message: "candidate_name is required"}
	}
	return nil
}
