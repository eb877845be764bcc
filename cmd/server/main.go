package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gestor/internal/backend"
	"gestor/internal/gate"
	"gestor/internal/platform/config"
	"gestor/internal/platform/health"
	"gestor/internal/platform/httpserver"
	"gestor/internal/platform/logger"
	"gestor/internal/platform/metrics"
	"gestor/internal/session"
	"gestor/internal/tenant"
	httptransport "gestor/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal services.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing gestor gateway",
		"addr", cfg.Addr,
		"env", cfg.Env,
		"api_url", cfg.APIURL,
		"auth_bypass", cfg.AuthBypass,
	)

	m := metrics.New()

	api := backend.New(cfg.APIURL,
		backend.WithTimeout(cfg.BackendTimeout),
		backend.WithLogger(log),
	)

	sessions := session.NewService(api,
		session.WithLogger(log),
		session.WithMetrics(m),
	)
	tenants := tenant.NewManager(api, tenant.NewMemoryPairStore(),
		tenant.WithLogger(log),
		tenant.WithMetrics(m),
	)

	policy := gate.DefaultPolicy()
	policy.DevBypass = cfg.AuthBypass

	healthHandler := health.New(cfg.Env)
	healthHandler.RegisterCheck("business_api", api.Ping)

	handler := httptransport.NewHandler(sessions, tenants, cfg.Production(), log)
	router := httptransport.NewRouter(handler, healthHandler, policy, m, log)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
