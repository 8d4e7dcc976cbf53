// Package httptransport assembles the public HTTP surface: the authorisation
// endpoints, the scrape endpoint and a liveness probe. Business logic stays
// in the feature handlers; this package only owns the middleware chain.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"xs2gate/internal/platform/metrics"
	"xs2gate/internal/platform/middleware"
)

// Registrar is implemented by every feature handler.
type Registrar interface {
	Register(r chi.Router)
}

// NewRouter builds the router with the shared middleware chain and mounts
// every feature handler.
func NewRouter(logger *slog.Logger, handlers ...Registrar) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.TppIdentification)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.AccessLog(logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	for _, h := range handlers {
		h.Register(r)
	}
	return r
}
