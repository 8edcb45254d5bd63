/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the frontend

ROUTE GROUPS:
  /api/leagues/{leagueID}/teams/{teamID}/*  Read-only projections
  /api/leagues/{leagueID}/actions/{kind}    Single roster actions
  /api/leagues/{leagueID}/reconcile         Commissioner batch edit
  /api/leagues/{leagueID}/activity          Merged feed
  /api/leagues/{leagueID}/rules|rollover    Admin
  /metrics                                  Prometheus

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates a router with all routes configured. allowedOrigins
// feeds the CORS middleware; an empty slice allows local dev defaults.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api/leagues/{leagueID}", func(r chi.Router) {
		r.Route("/teams/{teamID}", func(r chi.Router) {
			r.Get("/projection", h.GetProjection)
			r.Get("/cap", h.GetCap)
			r.Get("/eligibility", h.GetEligibility)
			r.Get("/roster", h.GetRoster)
		})

		r.Post("/actions/{kind}", h.SubmitAction)
		r.Post("/reconcile", h.Reconcile)
		r.Get("/activity", h.GetActivity)

		// Admin
		r.Put("/rules", h.UpdateRules)
		r.Post("/rollover", h.Rollover)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
