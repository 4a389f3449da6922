/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. RealIP:     Client address from X-Forwarded-For / X-Real-IP
  3. Logger:     Access log through logrus, tagged with the request ID
  4. Recoverer:  Panic recovery (500 instead of crash)
  5. CORS:       Cross-origin requests for frontends

ROUTE GROUPS:
  /healthz                  Liveness + store ping
  /api/users/*              Users and their availabilities, leave, shifts
  /api/availabilities/*     Single-window operations
  /api/leave-requests/*     Approval queue and decisions
  /api/shifts/*             Single-shift operations
  /api/scenarios/*          Demo data (only with EnableScenarios)
  /api/admin/*              Generator trigger and status

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	AllowedOrigins []string

	// EnableScenarios mounts the demo loaders under /api/scenarios.
	EnableScenarios bool
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", h.Health)

	r.Route("/api", func(r chi.Router) {
		// User routes
		r.Route("/users", func(r chi.Router) {
			r.Post("/", h.CreateUser)
			r.Get("/{id}", h.GetUser)

			r.Post("/{id}/availabilities", h.CreateAvailability)
			r.Get("/{id}/availabilities", h.ListAvailabilities)
			r.Post("/{id}/availabilities/generate", h.GenerateAvailabilities)

			r.Post("/{id}/leave-requests", h.CreateLeaveRequest)
			r.Get("/{id}/leave-requests", h.ListLeaveRequests)

			r.Post("/{id}/shifts", h.CreateShift)
			r.Get("/{id}/shifts", h.ListShifts)
		})

		// Availability routes
		r.Route("/availabilities", func(r chi.Router) {
			r.Get("/{id}", h.GetAvailability)
			r.Put("/{id}", h.UpdateAvailability)
			r.Delete("/{id}", h.DeleteAvailability)
			r.Get("/{id}/occurrences", h.GetOccurrences)
		})

		// Leave request routes
		r.Route("/leave-requests", func(r chi.Router) {
			r.Get("/pending", h.ListPendingLeaveRequests)
			r.Get("/{id}", h.GetLeaveRequest)
			r.Post("/{id}/approve", h.ApproveLeaveRequest)
			r.Post("/{id}/reject", h.RejectLeaveRequest)
			r.Post("/{id}/cancel", h.CancelLeaveRequest)
		})

		// Shift routes
		r.Route("/shifts", func(r chi.Router) {
			r.Put("/{id}", h.UpdateShift)
			r.Delete("/{id}", h.DeleteShift)
		})

		if opts.EnableScenarios {
			r.Route("/scenarios", func(r chi.Router) {
				r.Get("/", h.ListScenarios)
				r.Post("/load", h.LoadScenario)
			})
		}

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/generate-availabilities", h.TriggerGeneration)
			r.Get("/scheduler", h.SchedulerStatus)
		})
	})

	return r
}

// requestLogger writes one access-log entry per request.
func requestLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				entry := log.WithFields(logrus.Fields{
					"request_id": middleware.GetReqID(r.Context()),
					"method":     r.Method,
					"path":       r.URL.Path,
					"status":     ww.Status(),
					"bytes":      ww.BytesWritten(),
					"duration":   time.Since(start).String(),
					"remote":     r.RemoteAddr,
				})
				switch {
				case ww.Status() >= http.StatusInternalServerError:
					entry.Error("request")
				case ww.Status() >= http.StatusBadRequest:
					entry.Warn("request")
				default:
					entry.Info("request")
				}
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
