package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Auth endpoints (no auth required)
		r.Post("/auth/login", s.handleLogin)

		// Voice webhooks. The skill endpoints authenticate upstream
		// (Alexa account linking, Google OAuth); the envelopes carry
		// no Dinodia user token.
		r.Post("/voice/alexa", s.handleAlexa)
		r.Post("/voice/google", s.handleGoogle)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/auth/me", s.handleMe)

			// Household endpoints
			r.Route("/households", func(r chi.Router) {
				r.Get("/", s.handleListHouseholds)
				r.Post("/", s.handleCreateHousehold)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/devices", s.handleListDevices)
					r.Get("/metadata", s.handleMetadata)
					r.Get("/ping", s.handlePing)

					r.Route("/members", func(r chi.Router) {
						r.Get("/", s.handleListMembers)
						r.Post("/", s.handleUpsertMember)
						r.Patch("/{userID}", s.handleUpdateMember)
						r.Delete("/{userID}", s.handleDeleteMember)
					})

					r.Route("/hub", func(r chi.Router) {
						r.Get("/", s.handleGetHub)
						r.Put("/", s.handleUpsertHub)
						r.Delete("/", s.handleDeleteHub)
					})
				})
			})

			// Control endpoints
			r.Post("/service", s.handleService)
			r.Post("/toggle", s.handleToggle)

			// Audit trail
			r.Get("/audit", s.handleListAudit)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
