/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the frontend

SEE ALSO:
  - handlers.go: handler implementations
  - cmd/server/main.go: server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.ListUsers)
			r.Get("/{id}/summary", h.GetUserSummary)
			r.Get("/{id}/badges", h.GetUserBadges)
		})

		r.Get("/leaderboard", h.GetLeaderboard)
		r.Get("/rewards", h.ListRewards)

		r.Route("/recognitions", func(r chi.Router) {
			r.Get("/", h.ListRecognitions)
			r.Post("/", h.GrantRecognition)
		})

		r.Route("/redemptions", func(r chi.Router) {
			r.Get("/", h.ListRedemptions)
			r.Post("/", h.RequestRedemption)
			r.Post("/{id}/approve", h.ApproveRedemption)
			r.Post("/{id}/reject", h.RejectRedemption)
		})

		r.Get("/stats/principles", h.GetPrincipleStats)
		r.Get("/export/results", h.ExportResults)
	})

	return r
}
