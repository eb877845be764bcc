// Package session resolves the authenticated principal behind stored
// credentials and owns the login, logout, and token refresh flows. It is the
// only consumer of the credential store; page and action code reads identity
// through this package.
package session

import (
	"context"
	"log/slog"
	"sync"

	"gestor/internal/backend"
	"gestor/internal/credentials"
	"gestor/internal/platform/metrics"
	dErrors "gestor/pkg/domain-errors"
)

// API is the slice of the business API the session layer depends on.
type API interface {
	Login(ctx context.Context, email, password string) (*backend.LoginResponse, error)
	Me(ctx context.Context, token string) (*backend.PrincipalPayload, error)
	Refresh(ctx context.Context, refreshToken string) (*backend.RefreshResponse, error)
	Logout(ctx context.Context, token string) error
}

// Service implements the session flows over an API client and a per-request
// credential store.
type Service struct {
	api     API
	logger  *slog.Logger
	metrics *metrics.Metrics
	refresh *Coordinator

	// clearMu serializes the stale-credential cleanup so a 401 observed by
	// concurrent resolvers clears the store exactly once.
	clearMu sync.Mutex
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics enables metric reporting.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService builds the session service and its refresh coordinator.
func NewService(api API, opts ...Option) *Service {
	s := &Service{api: api}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.refresh = NewCoordinator(api, s.logger, s.metrics)
	return s
}

// Refresher exposes the token refresh coordinator.
func (s *Service) Refresher() *Coordinator {
	return s.refresh
}

// ResolveCurrentPrincipal resolves the principal behind the stored
// credentials.
//
// Safe to call repeatedly: the only mutation is the cleanup after the
// identity endpoint rejects the token, and that happens at most once per
// stale token even under concurrent calls. Transient backend failures leave
// the stored credentials untouched so a retry can succeed.
func (s *Service) ResolveCurrentPrincipal(ctx context.Context, store credentials.Store) (*Principal, error) {
	token, ok := store.Get(credentials.KindAuthToken)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "no credentials")
	}
	if _, ok := store.Get(credentials.KindClientID); !ok {
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "no active tenant")
	}

	payload, err := s.api.Me(ctx, token)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthenticated) {
			s.clearStale(ctx, store, token)
			s.metrics.IncrementAuthFailures()
			return nil, dErrors.Wrap(err, dErrors.CodeUnauthenticated, "session expired")
		}
		return nil, err
	}

	return PrincipalFromPayload(payload)
}

// ResolveWithRefresh resolves the principal, attempting a single
// refresh-and-retry when the identity endpoint rejects the token. At most one
// refresh happens per failed resolution; a second rejection gives up and
// clears credentials.
func (s *Service) ResolveWithRefresh(ctx context.Context, store credentials.Store) (*Principal, error) {
	token, ok := store.Get(credentials.KindAuthToken)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "no credentials")
	}
	if _, ok := store.Get(credentials.KindClientID); !ok {
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "no active tenant")
	}

	payload, err := s.api.Me(ctx, token)
	if err == nil {
		return PrincipalFromPayload(payload)
	}
	if !dErrors.HasCode(err, dErrors.CodeUnauthenticated) {
		return nil, err
	}

	if _, hasRefresh := store.Get(credentials.KindRefreshToken); !hasRefresh {
		s.clearStale(ctx, store, token)
		s.metrics.IncrementAuthFailures()
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthenticated, "session expired")
	}

	newToken, refreshErr := s.refresh.Refresh(ctx, store)
	if refreshErr != nil {
		s.metrics.IncrementAuthFailures()
		return nil, refreshErr
	}

	payload, err = s.api.Me(ctx, newToken)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthenticated) {
			s.clearStale(ctx, store, newToken)
			s.metrics.IncrementAuthFailures()
			return nil, dErrors.Wrap(err, dErrors.CodeUnauthenticated, "session expired")
		}
		return nil, err
	}

	return PrincipalFromPayload(payload)
}

// clearStale removes every credential after the identity endpoint rejected
// usedToken. The guard re-reads the store under a lock so that when several
// requests race on the same rejected token, only the first one clears.
func (s *Service) clearStale(ctx context.Context, store credentials.Store, usedToken string) {
	s.clearMu.Lock()
	defer s.clearMu.Unlock()

	current, ok := store.Get(credentials.KindAuthToken)
	if !ok || current != usedToken {
		return
	}
	if err := store.ClearAll(); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear stale credentials", "error", err)
		return
	}
	s.metrics.IncrementCredentialClears()
	s.logger.InfoContext(ctx, "cleared stale credentials",
		"event", "credentials_cleared",
		"reason", "token_rejected",
		"log_type", "audit",
	)
}
