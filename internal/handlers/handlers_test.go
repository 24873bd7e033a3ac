package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"text/template"

	"interviewassist/core/internal/models"
)

type mockQuestions struct {
	generateFn func(ctx context.Context) (models.QuestionSet, error)
	fallback   models.QuestionSet
}

func (m *mockQuestions) Generate(ctx context.Context) (models.QuestionSet, error) {
	if m.generateFn == nil {
		return models.QuestionSet{}, errors.New("not configured")
	}
	return m.generateFn(ctx)
}

func (m *mockQuestions) GenerateWithFallback(ctx context.Context) models.QuestionSet {
	return m.fallback
}

type mockScorer struct {
	evaluateFn func(ctx context.Context, q models.InterviewQuestion, answer string, timeSpent int) (models.Evaluation, error)
	fallback   models.Evaluation
	lastSpent  int
}

func (m *mockScorer) Evaluate(ctx context.Context, q models.InterviewQuestion, answer string, timeSpent int) (models.Evaluation, error) {
	m.lastSpent = timeSpent
	if m.evaluateFn == nil {
		return models.Evaluation{}, errors.New("not configured")
	}
	return m.evaluateFn(ctx, q, answer, timeSpent)
}

func (m *mockScorer) EvaluateWithFallback(ctx context.Context, q models.InterviewQuestion, answer string, timeSpent int) models.Evaluation {
	m.lastSpent = timeSpent
	return m.fallback
}

type mockSummaries struct {
	text string
}

func (m *mockSummaries) Summarize(ctx context.Context, name string, answers []models.Answer) string {
	return m.text
}

type mockStatus struct {
	status models.ProviderStatus
}

func (m *mockStatus) Status() models.ProviderStatus { return m.status }

type mockPromptManager struct {
	getTemplatesFn func() map[string]map[string]*template.Template
}

func (m *mockPromptManager) GetTemplates() map[string]map[string]*template.Template {
	if m.getTemplatesFn == nil {
		return map[string]map[string]*template.Template{
			"questions": {
				"default": template.Must(template.New("test").Parse("test")),
			},
		}
	}
	return m.getTemplatesFn()
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(ctx context.Context) error { return m.err }

func performRequest(handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}
