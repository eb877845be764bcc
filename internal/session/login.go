package session

import (
	"context"
	"strings"

	"gestor/internal/credentials"
	dErrors "gestor/pkg/domain-errors"
)

// LoginInput carries the login form fields plus the requesting device's
// User-Agent for audit logging.
type LoginInput struct {
	Email     string
	Password  string
	UserAgent string
}

// Normalize trims whitespace from the email. Passwords are taken verbatim.
func (in *LoginInput) Normalize() {
	in.Email = strings.TrimSpace(in.Email)
}

// Validate checks the form fields, naming the offending field so the UI can
// re-prompt precisely.
func (in *LoginInput) Validate() error {
	if in.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if !strings.Contains(in.Email, "@") {
		return dErrors.New(dErrors.CodeValidation, "email is invalid")
	}
	if in.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "password is required")
	}
	return nil
}

// Login authenticates against the business API and persists the returned
// credentials. A login response without a token or tenant identifier never
// reaches the store: the credential invariant is that an auth token always
// has a tenant id next to it.
func (s *Service) Login(ctx context.Context, store credentials.Store, in LoginInput) (*Principal, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	resp, err := s.api.Login(ctx, in.Email, in.Password)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthenticated) {
			s.metrics.IncrementAuthFailures()
		}
		return nil, err
	}

	principal, err := PrincipalFromPayload(&resp.User)
	if err != nil {
		return nil, err
	}

	if err := store.Set(credentials.KindAuthToken, resp.Token); err != nil {
		return nil, s.abortLogin(ctx, store, err)
	}
	if err := store.Set(credentials.KindClientID, resp.ClientID); err != nil {
		return nil, s.abortLogin(ctx, store, err)
	}
	if resp.RefreshToken != "" {
		if err := store.Set(credentials.KindRefreshToken, resp.RefreshToken); err != nil {
			return nil, s.abortLogin(ctx, store, err)
		}
	}

	s.metrics.IncrementLogins()
	s.logger.InfoContext(ctx, "user logged in",
		"event", "user_logged_in",
		"log_type", "audit",
		"user_id", principal.ID,
		"tenant_id", resp.ClientID,
		"device", DeviceLabel(in.UserAgent),
	)

	return principal, nil
}

// abortLogin handles a persistence failure mid-login. The session state is
// indeterminate, so it is treated conservatively: everything is cleared and
// the caller sees a storage error.
func (s *Service) abortLogin(ctx context.Context, store credentials.Store, cause error) error {
	if err := store.ClearAll(); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear credentials after aborted login", "error", err)
	}
	return dErrors.Wrap(cause, dErrors.CodeStorageUnavailable, "could not persist session credentials")
}

// Logout invalidates the session server-side on a best-effort basis, then
// clears all local credentials. A backend failure never blocks the local
// clear; a local clear failure is the only error surfaced.
func (s *Service) Logout(ctx context.Context, store credentials.Store) error {
	if token, ok := store.Get(credentials.KindAuthToken); ok {
		if err := s.api.Logout(ctx, token); err != nil {
			s.logger.WarnContext(ctx, "backend logout failed, clearing locally anyway", "error", err)
		}
	}

	if err := store.ClearAll(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "could not clear session credentials")
	}

	s.metrics.IncrementCredentialClears()
	s.logger.InfoContext(ctx, "user logged out",
		"event", "user_logged_out",
		"log_type", "audit",
	)
	return nil
}
