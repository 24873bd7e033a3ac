package handlers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"interviewassist/core/internal/middleware"
	"interviewassist/core/internal/models"
	"interviewassist/core/internal/resilience"
	"interviewassist/core/internal/summary"
	"interviewassist/core/internal/utils"
)

// QuestionGenerator is satisfied by *questions.Service.
type QuestionGenerator interface {
	Generate(ctx context.Context) (models.QuestionSet, error)
	GenerateWithFallback(ctx context.Context) models.QuestionSet
}

// AnswerScorer is satisfied by *evaluation.Service.
type AnswerScorer interface {
	Evaluate(ctx context.Context, question models.InterviewQuestion, answer string, timeSpent int) (models.Evaluation, error)
	EvaluateWithFallback(ctx context.Context, question models.InterviewQuestion, answer string, timeSpent int) models.Evaluation
}

// SummaryWriter is satisfied by *summary.Generator.
type SummaryWriter interface {
	Summarize(ctx context.Context, candidateName string, answers []models.Answer) string
}

type AIHandler struct {
	questions QuestionGenerator
	scorer    AnswerScorer
	summaries SummaryWriter
	logger    *zap.Logger
}

func NewAIHandler(questions QuestionGenerator, scorer AnswerScorer, summaries SummaryWriter, logger *zap.Logger) *AIHandler {
	return &AIHandler{
		questions: questions,
		scorer:    scorer,
		summaries: summaries,
		logger:    logger,
	}
}

func (h *AIHandler) QuestionsHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.QuestionsRequest](r)
	req.RequestID = ensureRequestID(req.RequestID)

	var set models.QuestionSet
	if req.Strict {
		var err error
		set, err = h.questions.Generate(r.Context())
		if err != nil {
			h.logger.Error("Question generation failed", zap.Error(err), zap.String("request_id", req.RequestID))
			writeServiceError(w, err)
			return
		}
	} else {
		set = h.questions.GenerateWithFallback(r.Context())
	}

	h.logger.Info("Questions generated",
		zap.String("request_id", req.RequestID),
		zap.String("source", set.Source))

	utils.JSON(w, http.StatusOK, models.QuestionsResponse{QuestionSet: set, RequestID: req.RequestID})
}

func (h *AIHandler) EvaluateHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.EvaluateRequest](r)
	req.RequestID = ensureRequestID(req.RequestID)

	var eval models.Evaluation
	if req.Strict {
		var err error
		eval, err = h.scorer.Evaluate(r.Context(), *req.Question, req.Answer, req.TimeSpent)
		if err != nil {
			h.logger.Error("Answer evaluation failed", zap.Error(err), zap.String("request_id", req.RequestID))
			writeServiceError(w, err)
			return
		}
	} else {
		eval = h.scorer.EvaluateWithFallback(r.Context(), *req.Question, req.Answer, req.TimeSpent)
	}

	h.logger.Info("Answer evaluated",
		zap.String("request_id", req.RequestID),
		zap.String("source", eval.Source),
		zap.Int("score", eval.Score))

	utils.JSON(w, http.StatusOK, models.EvaluationResponse{Evaluation: eval, RequestID: req.RequestID})
}

func (h *AIHandler) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.SummaryRequest](r)
	req.RequestID = ensureRequestID(req.RequestID)

	text := h.summaries.Summarize(r.Context(), req.CandidateName, req.Answers)

	utils.JSON(w, http.StatusOK, models.SummaryResponse{
		Summary:   text,
		Score:     summary.MeanScore(req.Answers),
		RequestID: req.RequestID,
	})
}

func generateRequestID() string {
	return uuid.New().String()
}

// ensureRequestID generates a request ID if one is not provided
func ensureRequestID(requestID string) string {
	if requestID == "" {
		return generateRequestID()
	}
	return requestID
}

// writeServiceError maps the resilience error taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var svcErr *resilience.ServiceError
	if !errors.As(err, &svcErr) {
		utils.WriteError(w, http.StatusInternalServerError, "ai_error", "AI request failed")
		return
	}

	status := http.StatusServiceUnavailable
	switch svcErr.Kind {
	case resilience.KindRateLimitExceeded:
		status = http.StatusTooManyRequests
		if svcErr.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(svcErr.RetryAfter.Seconds()))))
		}
	case resilience.KindQuotaExceeded:
		status = http.StatusTooManyRequests
	case resilience.KindAuthError, resilience.KindParseError, resilience.KindInvalidResponse:
		status = http.StatusBadGateway
	case resilience.KindTimeout:
		status = http.StatusGatewayTimeout
	}
	utils.WriteError(w, status, string(svcErr.Kind), svcErr.Message)
}
