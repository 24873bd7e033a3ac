package routers

import (
	"interviewassist/core/internal/handlers"
	"interviewassist/core/internal/middleware"
	"interviewassist/core/internal/models"

	"github.com/go-chi/chi/v5"
)

func AIRoutes(router *chi.Mux, aiHandler *handlers.AIHandler) {
	router.Route("/api/v1/ai", func(r chi.Router) {
		r.With(middleware.ValidateRequest[*models.QuestionsRequest]()).Post("/questions", aiHandler.QuestionsHandler)
		r.With(middleware.ValidateRequest[*models.EvaluateRequest]()).Post("/evaluate", aiHandler.EvaluateHandler)
		r.With(middleware.ValidateRequest[*models.SummaryRequest]()).Post("/summary", aiHandler.SummaryHandler)
	})
}
