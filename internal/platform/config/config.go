package config

import (
	"os"
	"time"
)

// Server captures process level configuration for the gateway.
type Server struct {
	Addr string
	Env  string

	// APIURL is the base URL of the external business API every outbound
	// call is made against.
	APIURL string

	// AuthBypass admits protected routes without credentials using a fixed
	// development principal. Forced off when Env is production.
	AuthBypass bool

	BackendTimeout time.Duration

	AuthTokenTTL    time.Duration
	RefreshTokenTTL time.Duration
	ClientIDTTL     time.Duration
}

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	defaultBackendTimeout  = 8 * time.Second
	defaultAuthTokenTTL    = 7 * 24 * time.Hour
	defaultRefreshTokenTTL = 30 * 24 * time.Hour
)

// Production reports whether the gateway runs with production hardening
// (secure cookies, bypass disabled).
func (s Server) Production() bool {
	return s.Env == EnvProduction
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:            getenv("GESTOR_ADDR", ":8080"),
		Env:             getenv("GESTOR_ENV", EnvDevelopment),
		APIURL:          getenv("API_URL", "http://localhost:9090"),
		BackendTimeout:  getenvDuration("BACKEND_TIMEOUT", defaultBackendTimeout),
		AuthTokenTTL:    defaultAuthTokenTTL,
		RefreshTokenTTL: defaultRefreshTokenTTL,
		ClientIDTTL:     defaultRefreshTokenTTL,
	}

	// The bypass is a development escape hatch only. A production build
	// never honors it, regardless of the environment variable.
	cfg.AuthBypass = os.Getenv("AUTH_BYPASS") == "true" && !cfg.Production()

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
