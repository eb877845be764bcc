package session

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"gestor/internal/backend"
	"gestor/internal/credentials"
	"gestor/internal/platform/metrics"
	dErrors "gestor/pkg/domain-errors"
)

// Coordinator performs the refresh-and-replace flow for expired auth tokens.
//
// Concurrent requests racing on the same refresh token share one network
// call through singleflight; a stale concurrent refresh would otherwise
// invalidate the pair a winning refresh just issued. There is no retry loop:
// one attempt, then the session is either renewed or dead.
type Coordinator struct {
	api     API
	logger  *slog.Logger
	metrics *metrics.Metrics
	group   singleflight.Group
}

// NewCoordinator builds a refresh coordinator over the given API client.
func NewCoordinator(api API, logger *slog.Logger, m *metrics.Metrics) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{api: api, logger: logger, metrics: m}
}

// Refresh rotates the token pair.
//
// Preconditions: a refresh token must be stored; its absence fails with
// no_refresh_token before any network traffic. On success both tokens are
// replaced together. On any refresh failure the credential store is fully
// cleared and the caller must force a fresh login.
func (c *Coordinator) Refresh(ctx context.Context, store credentials.Store) (string, error) {
	refreshToken, ok := store.Get(credentials.KindRefreshToken)
	if !ok {
		c.metrics.IncrementTokenRefreshes("no_token")
		return "", dErrors.New(dErrors.CodeNoRefreshToken, "no refresh token available")
	}

	v, err, shared := c.group.Do(refreshToken, func() (any, error) {
		return c.api.Refresh(ctx, refreshToken)
	})
	if err != nil {
		if clearErr := store.ClearAll(); clearErr != nil {
			c.logger.ErrorContext(ctx, "failed to clear credentials after refresh failure", "error", clearErr)
		}
		c.metrics.IncrementTokenRefreshes("failed")
		c.metrics.IncrementCredentialClears()
		c.logger.WarnContext(ctx, "token refresh failed, session terminated",
			"event", "token_refresh_failed",
			"log_type", "audit",
			"error", err,
		)
		return "", &dErrors.Error{Code: dErrors.CodeRefreshFailed, Message: "session could not be renewed", Err: err}
	}

	resp := v.(*backend.RefreshResponse)

	// Every caller that shared the network result still writes the pair to
	// its own store: concurrent requests carry independent cookie jars for
	// the same browser session.
	if err := store.SetTokens(resp.Token, resp.RefreshToken); err != nil {
		c.metrics.IncrementTokenRefreshes("failed")
		return "", dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "could not persist refreshed tokens")
	}

	c.metrics.IncrementTokenRefreshes("success")
	c.logger.InfoContext(ctx, "token refreshed",
		"event", "token_refreshed",
		"log_type", "audit",
		"shared", shared,
	)
	return resp.Token, nil
}
