package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"interviewassist/core/internal/models"
	"interviewassist/core/internal/roster"
	"interviewassist/core/internal/utils"
)

const maxListLimit = 200

type CandidatesHandler struct {
	roster *roster.Roster
	logger *zap.Logger
}

func NewCandidatesHandler(r *roster.Roster, logger *zap.Logger) *CandidatesHandler {
	return &CandidatesHandler{roster: r, logger: logger}
}

// ListHandler serves the interviewer dashboard: ?search=&status=&sort=&limit=
func (h *CandidatesHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := models.CandidateFilter{
		Search: query.Get("search"),
		Status: query.Get("status"),
		SortBy: query.Get("sort"),
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			utils.WriteError(w, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer")
			return
		}
		filter.Limit = min(limit, maxListLimit)
	}

	candidates, err := h.roster.List(r.Context(), filter)
	if errors.Is(err, roster.ErrInvalidStatus) {
		utils.WriteError(w, http.StatusBadRequest, "invalid_status", err.Error())
		return
	}
	if err != nil {
		h.logger.Error("Failed to list candidates", zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, "database_error", "Failed to list candidates")
		return
	}
	if candidates == nil {
		candidates = []models.Candidate{}
	}

	utils.JSON(w, http.StatusOK, models.CandidatesResponse{Candidates: candidates, Count: len(candidates)})
}

func (h *CandidatesHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	candidate, err := h.roster.Get(r.Context(), chi.URLParam(r, "candidate_id"))
	if errors.Is(err, roster.ErrCandidateNotFound) {
		utils.WriteError(w, http.StatusNotFound, "candidate_not_found", "Candidate not found")
		return
	}
	if err != nil {
		h.logger.Error("Failed to get candidate", zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, "database_error", "Failed to load candidate")
		return
	}
	utils.JSON(w, http.StatusOK, candidate)
}
