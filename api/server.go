/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. RealIP:     Honor proxy headers for client addresses
  3. Logger:     Request logging
  4. Recoverer:  Panic recovery (500 instead of crash)
  5. CORS:       Cross-origin requests for a frontend

ROUTE GROUPS:
  /api/people/*          People, their requests, balances, eligibility
  /api/requests/*        Lifecycle transitions and the pending queue
  /api/medical-leaves/*  Medical leave open/end
  /api/admin/*           Completion sweep, demo seed
  /metrics               Prometheus exposition

SECURITY NOTE:
  Actor identity comes from the X-Actor-ID header with no authentication
  in front of it. Put this behind a gateway before exposing it.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/warp/leave-engine/leave"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Actor-ID"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// People routes
		r.Route("/people", func(r chi.Router) {
			r.Get("/", h.ListPeople)
			r.Post("/", h.SavePerson)
			r.Get("/{id}", h.GetPerson)
			r.Get("/{id}/team", h.GetTeam)
			r.Get("/{id}/team/capacity", h.GetTeamCapacity)
			r.Get("/{id}/requests", h.ListPersonRequests)
			r.Post("/{id}/requests", h.SubmitRequest)
			r.Get("/{id}/balance", h.GetBalance)
			r.Post("/{id}/balance/recompute", h.RecomputeBalance)
			r.Put("/{id}/balance", h.SetManualBalance)
			r.Delete("/{id}/balance", h.RestoreAutomaticBalance)
			r.Get("/{id}/day-off", h.CheckDayOff)
			r.Get("/{id}/medical-leaves", h.ListPersonMedicalLeaves)
		})

		// Request lifecycle routes
		r.Route("/requests", func(r chi.Router) {
			r.Get("/pending", h.ListPendingRequests)
			r.Get("/{id}", h.GetRequest)
			r.Post("/{id}/submit", h.Transition(leave.ActionSubmit))
			r.Post("/{id}/approve", h.Transition(leave.ActionApprove))
			r.Post("/{id}/reject", h.Transition(leave.ActionReject))
			r.Post("/{id}/request-info", h.Transition(leave.ActionRequestInfo))
			r.Post("/{id}/resubmit", h.Transition(leave.ActionResubmit))
			r.Post("/{id}/cancel", h.Transition(leave.ActionCancel))
		})

		// Medical leave routes
		r.Route("/medical-leaves", func(r chi.Router) {
			r.Post("/", h.OpenMedicalLeave)
			r.Post("/{id}/end", h.EndMedicalLeave)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/elapse", h.RunElapse)
			r.Post("/seed", h.LoadSeed)
		})
	})

	r.Method("GET", "/metrics", h.Metrics.HTTPHandler())

	return r
}
