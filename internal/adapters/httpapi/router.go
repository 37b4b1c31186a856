package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterOptions carries cross-cutting middleware into the router.
type RouterOptions struct {
	AuthMiddleware func(http.Handler) http.Handler
}

// NewRouter constructs the agent's HTTP router.
//
// This is intentionally a thin adapter: handlers decode/encode JSON and
// delegate to the print service; the auth middleware owns the signature
// check so handlers never see an unauthenticated request.
func NewRouter(s *Server, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	// Baseline production-safe middleware (minimal but useful).
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	if opts.AuthMiddleware != nil {
		r.Use(opts.AuthMiddleware)
	}

	r.Get("/health", s.Health)
	r.Post("/print", s.Print)

	return r
}
