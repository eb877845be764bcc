package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gestor/internal/gate"
	"gestor/internal/platform/health"
	"gestor/internal/platform/metrics"
	"gestor/internal/platform/middleware"
	"gestor/pkg/httputil"
)

// NewRouter wires all endpoints with the middleware stack and the route gate.
func NewRouter(h *Handler, healthHandler *health.Handler, policy gate.Policy, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Latency(m))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(gate.Middleware(policy, logger))

	healthHandler.Register(r)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/auth/login", h.handleLogin)
	r.Post("/auth/logout", h.handleLogout)
	r.Get("/auth/session", h.handleSession)

	r.Post("/tenant/switch", h.handleSwitchTenant)
	r.Post("/tenant/exit", h.handleExitTenant)

	r.Get("/dashboard", h.handleDashboard)
	r.Get("/dashboard/*", h.handleDashboard)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteResult(w, http.StatusOK, map[string]string{"service": "gestor"})
	})

	return r
}
