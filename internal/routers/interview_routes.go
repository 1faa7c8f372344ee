package routers

import (
	"saylo/internal/handlers"
	"saylo/internal/middleware"
	"saylo/internal/models"

	"github.com/go-chi/chi/v5"
)

func InterviewRoutes(router *chi.Mux, interviewHandler *handlers.InterviewHandler) {
	router.Route("/api/v1/interview", func(r chi.Router) {
		r.With(middleware.ValidateRequest[*models.StartInterviewRequest]()).Post("/start", interviewHandler.StartHandler)
		r.With(middleware.ValidateRequest[*models.ChatRequest]()).Post("/chat", interviewHandler.ChatHandler)
		r.Post("/audio", interviewHandler.AudioHandler)
		r.Post("/{session_id}/end", interviewHandler.EndHandler)
		r.Get("/history", interviewHandler.HistoryHandler)
	})
}
