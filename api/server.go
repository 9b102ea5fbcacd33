/*
server.go - HTTP router and middleware configuration

MIDDLEWARE STACK:
  1. Logger:     request logging
  2. Recoverer:  panic recovery (500 instead of crash)
  3. RequestID:  unique ID per request for tracing
  4. CORS:       cross-origin requests for the dispatch frontend

ROUTE GROUPS:
  /api/drivers/*   roster, clock-in/out, shifts, leave submission, payroll
  /api/leaves/*    approval workflow
  /api/payroll/*   fleet-wide summaries
  /metrics         Prometheus scrape endpoint

SEE ALSO:
  - handlers.go: handler implementations
  - cmd/server/main.go: server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/drivers", func(r chi.Router) {
			r.Get("/", h.ListDrivers)
			r.Post("/", h.CreateDriver)
			r.Get("/{id}", h.GetDriver)

			r.Post("/{id}/clock-in", h.ClockIn)
			r.Post("/{id}/clock-out", h.ClockOut)
			r.Get("/{id}/shifts", h.ListShifts)
			r.Get("/{id}/shifts/active", h.GetActiveShift)

			r.Post("/{id}/leaves", h.SubmitLeave)
			r.Get("/{id}/leaves", h.ListDriverLeaves)

			r.Get("/{id}/payroll", h.GetDriverPayroll)
			r.Get("/{id}/payroll/ytd", h.GetDriverYearToDate)
		})

		r.Route("/leaves", func(r chi.Router) {
			r.Get("/pending", h.ListPendingLeaves)
			r.Post("/{id}/approve", h.ApproveLeave)
			r.Post("/{id}/reject", h.RejectLeave)
		})

		r.Route("/payroll", func(r chi.Router) {
			r.Get("/summary", h.GetMonthlySummary)
			r.Get("/ytd", h.GetYearToDateSummary)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
