package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the HTTP surface of the service.
func NewRouter(h *HTTPHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", h.HealthCheck)

	r.Route("/api/v1/sessions/{sessionId}", func(r chi.Router) {
		r.Get("/status", h.GetSessionStatus)
		r.Post("/join", h.JoinSession)
		r.Post("/cancellations", h.RequestCancellation)
		r.Post("/watch", h.WatchSession)
		r.Delete("/watch", h.UnwatchSession)
	})

	return r
}
