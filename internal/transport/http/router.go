// Package httptransport assembles the HTTP surface: middleware stack, health
// and metrics endpoints, and every journey kind's routes.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"contactsadmin/internal/platform/middleware"
	"contactsadmin/internal/transport/http/shared"
)

// JourneyHandler is implemented by every journey kind package.
type JourneyHandler interface {
	Register(r chi.Router)
}

// RouterConfig carries the router's collaborators.
type RouterConfig struct {
	Logger       *slog.Logger
	JWTValidator middleware.JWTValidator
	Handlers     []JourneyHandler
}

// NewRouter wires the middleware stack and mounts every journey handler.
// Health and metrics sit outside the auth boundary.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(cfg.JWTValidator, cfg.Logger))
		for _, h := range cfg.Handlers {
			h.Register(r)
		}
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
