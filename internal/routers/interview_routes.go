package routers

import (
	"interviewassist/core/internal/handlers"
	"interviewassist/core/internal/middleware"
	"interviewassist/core/internal/models"

	"github.com/go-chi/chi/v5"
)

func InterviewRoutes(router *chi.Mux, interviewHandler *handlers.InterviewHandler, candidatesHandler *handlers.CandidatesHandler) {
	router.Route("/api/v1/interviews", func(r chi.Router) {
		r.Get("/", interviewHandler.ListIncompleteHandler)
		r.With(middleware.ValidateRequest[*models.StartInterviewRequest]()).Post("/", interviewHandler.StartHandler)

		r.Route("/{candidate_id}", func(r chi.Router) {
			r.Get("/", interviewHandler.GetHandler)
			r.Delete("/", interviewHandler.ClearHandler)
			r.With(middleware.ValidateRequest[*models.SubmitAnswerRequest]()).Post("/answers", interviewHandler.SubmitAnswerHandler)
			r.Post("/pause", interviewHandler.PauseHandler)
			r.Post("/resume", interviewHandler.ResumeHandler)
			r.Post("/restore", interviewHandler.RestoreHandler)
		})
	})

	router.Route("/api/v1/candidates", func(r chi.Router) {
		r.Get("/", candidatesHandler.ListHandler)
		r.Get("/{candidate_id}", candidatesHandler.GetHandler)
	})
}
