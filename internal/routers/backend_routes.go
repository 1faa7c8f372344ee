package routers

import (
	"saylo/internal/handlers"
	"saylo/internal/middleware"
	"saylo/internal/models"

	"github.com/go-chi/chi/v5"
)

func AuthRoutes(router *chi.Mux, authHandler *handlers.AuthHandler) {
	router.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.ValidateRequest[*models.RegisterRequest]()).Post("/register", authHandler.RegisterHandler)
		r.With(middleware.ValidateRequest[*models.LoginRequest]()).Post("/login", authHandler.LoginHandler)
		r.With(middleware.RequireAuth(authHandler.JWTSecret)).Get("/verify", authHandler.VerifyHandler)
	})
}

func ResumeRoutes(router *chi.Mux, resumeHandler *handlers.ResumeHandler, secret string) {
	router.Route("/api/v1/resumes", func(r chi.Router) {
		r.Use(middleware.RequireAuth(secret))
		r.With(middleware.ValidateRequest[*models.CreateResumeRequest]()).Post("/", resumeHandler.CreateHandler)
		r.Get("/", resumeHandler.ListHandler)
		r.Get("/{id}", resumeHandler.GetHandler)
	})
}

func RecordRoutes(router *chi.Mux, recordHandler *handlers.RecordHandler, secret string) {
	router.Route("/api/v1/interviews", func(r chi.Router) {
		r.Use(middleware.RequireAuth(secret))
		r.With(middleware.ValidateRequest[*models.CreateInterviewRecordRequest]()).Post("/", recordHandler.CreateHandler)
		r.Get("/", recordHandler.ListHandler)
		r.Get("/{id}", recordHandler.GetHandler)
		r.Post("/{id}/end", recordHandler.EndHandler)
	})
}

func CareerRoutes(router *chi.Mux, careerHandler *handlers.CareerHandler, secret string) {
	router.Route("/api/v1/career-paths", func(r chi.Router) {
		r.Get("/", careerHandler.ListHandler)
		r.With(middleware.RequireAuth(secret)).Get("/recommended", careerHandler.RecommendedHandler)
	})
}
