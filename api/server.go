/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for lookup frontends

ROUTE GROUPS:
  /api/medicare-rates   Medicare allowed-amount lookups
  /api/rates            State fee-schedule lookups
  /api/states           Catalog: states
  /api/procedures       Catalog: procedure codes
  /api/health           Liveness probe

SECURITY NOTE:
  No authentication middleware. The reference data is public; deploy
  behind a gateway if access control is needed.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/ratesd/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/medicare-rates", h.GetMedicareRate)
		r.Get("/rates", h.GetRate)
		r.Get("/states", h.ListStates)
		r.Get("/procedures", h.ListProcedures)
		r.Get("/health", h.Health)
	})

	return r
}
