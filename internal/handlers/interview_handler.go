package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"interviewassist/core/internal/interview"
	"interviewassist/core/internal/middleware"
	"interviewassist/core/internal/models"
	"interviewassist/core/internal/session"
	"interviewassist/core/internal/utils"
)

type InterviewHandler struct {
	orchestrator *interview.Orchestrator
	logger       *zap.Logger
}

func NewInterviewHandler(orchestrator *interview.Orchestrator, logger *zap.Logger) *InterviewHandler {
	return &InterviewHandler{orchestrator: orchestrator, logger: logger}
}

func (h *InterviewHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.StartInterviewRequest](r)
	req.RequestID = ensureRequestID(req.RequestID)

	view, err := h.orchestrator.Start(r.Context(), req.ResumeData())
	if err != nil {
		h.logger.Error("Failed to start interview", zap.Error(err), zap.String("request_id", req.RequestID))
		h.writeInterviewError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, view)
}

func (h *InterviewHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	view, err := h.orchestrator.Get(chi.URLParam(r, "candidate_id"))
	if err != nil {
		h.writeInterviewError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, view)
}

func (h *InterviewHandler) ListIncompleteHandler(w http.ResponseWriter, r *http.Request) {
	ids, err := h.orchestrator.Incomplete(r.Context())
	if err != nil {
		h.logger.Error("Failed to list incomplete sessions", zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, "store_error", "Failed to list sessions")
		return
	}
	if ids == nil {
		ids = []string{}
	}
	utils.JSON(w, http.StatusOK, models.IncompleteSessionsResponse{CandidateIDs: ids})
}

func (h *InterviewHandler) SubmitAnswerHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.SubmitAnswerRequest](r)
	req.RequestID = ensureRequestID(req.RequestID)
	candidateID := chi.URLParam(r, "candidate_id")

	sub, err := h.orchestrator.SubmitAnswer(r.Context(), candidateID, req.Answer)
	if err != nil {
		h.writeInterviewError(w, err)
		return
	}

	resp := models.SubmitAnswerResponse{
		Answer:     sub.Answer,
		Completed:  sub.Completed,
		FinalScore: sub.FinalScore,
		Summary:    sub.Summary,
		RequestID:  req.RequestID,
	}

	h.logger.Info("Answer submitted",
		zap.String("request_id", req.RequestID),
		zap.String("candidate_id", candidateID),
		zap.String("question_id", sub.Answer.QuestionID),
		zap.Int("score", sub.Answer.Score),
		zap.Bool("completed", sub.Completed))
	utils.JSON(w, http.StatusOK, resp)
}

func (h *InterviewHandler) PauseHandler(w http.ResponseWriter, r *http.Request) {
	view, err := h.orchestrator.Pause(r.Context(), chi.URLParam(r, "candidate_id"))
	if err != nil {
		h.writeInterviewError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, view)
}

func (h *InterviewHandler) ResumeHandler(w http.ResponseWriter, r *http.Request) {
	view, err := h.orchestrator.Resume(r.Context(), chi.URLParam(r, "candidate_id"))
	if err != nil {
		h.writeInterviewError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, view)
}

func (h *InterviewHandler) RestoreHandler(w http.ResponseWriter, r *http.Request) {
	view, err := h.orchestrator.Restore(r.Context(), chi.URLParam(r, "candidate_id"))
	if err != nil {
		h.writeInterviewError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, view)
}

func (h *InterviewHandler) ClearHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.orchestrator.Clear(r.Context(), chi.URLParam(r, "candidate_id")); err != nil {
		h.writeInterviewError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *InterviewHandler) writeInterviewError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, interview.ErrSessionNotFound):
		utils.WriteError(w, http.StatusNotFound, "session_not_found", "Interview session not found")
	case errors.Is(err, interview.ErrEvaluationInProgress):
		utils.WriteError(w, http.StatusConflict, "evaluation_in_progress", "An answer is already being evaluated")
	case errors.Is(err, interview.ErrNotActive), errors.Is(err, interview.ErrInvalidTransition):
		utils.WriteError(w, http.StatusConflict, "invalid_state", err.Error())
	case errors.Is(err, interview.ErrIncompleteResume):
		utils.WriteError(w, http.StatusBadRequest, "missing_contact_fields", err.Error())
	case errors.Is(err, session.ErrInvalidSnapshot):
		utils.WriteError(w, http.StatusUnprocessableEntity, "invalid_snapshot", "Stored session could not be restored")
	default:
		h.logger.Error("Interview operation failed", zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, "internal_error", "Interview operation failed")
	}
}
