// Package credentials owns the persistence of session credentials: the auth
// token, the refresh token, and the active tenant identifier. Nothing outside
// this package touches the cookie layout; UI-facing code goes through the
// session resolver instead.
package credentials

import (
	"time"

	dErrors "gestor/pkg/domain-errors"
)

// Kind identifies one of the three credential slots.
type Kind string

const (
	KindAuthToken    Kind = "auth_token"
	KindRefreshToken Kind = "refresh_token"
	KindClientID     Kind = "client_id"
)

// Kinds lists every credential slot. ClearAll iterates this set so a new
// slot cannot be forgotten at logout.
var Kinds = []Kind{KindAuthToken, KindRefreshToken, KindClientID}

// Valid reports whether k names a known credential slot.
func (k Kind) Valid() bool {
	switch k {
	case KindAuthToken, KindRefreshToken, KindClientID:
		return true
	}
	return false
}

// TTLs carries the lifetime of each credential slot.
type TTLs struct {
	AuthToken    time.Duration
	RefreshToken time.Duration
	ClientID     time.Duration
}

// DefaultTTLs returns the production lifetimes: auth 7 days, refresh and
// tenant 30 days.
func DefaultTTLs() TTLs {
	return TTLs{
		AuthToken:    7 * 24 * time.Hour,
		RefreshToken: 30 * 24 * time.Hour,
		ClientID:     30 * 24 * time.Hour,
	}
}

// For returns the lifetime of the given slot.
func (t TTLs) For(kind Kind) time.Duration {
	switch kind {
	case KindAuthToken:
		return t.AuthToken
	case KindRefreshToken:
		return t.RefreshToken
	default:
		return t.ClientID
	}
}

// Store persists session credentials for one browser session.
//
// Error Contract: writes return a storage_unavailable domain error when the
// underlying persistence cannot accept the mutation. Reads never error; an
// absent value reads as ("", false).
//
// Concurrency Contract: ClearAll and SetTokens are atomic; a concurrent read
// observes either the fully-old or the fully-new state, never a partial one.
type Store interface {
	Set(kind Kind, value string) error
	Get(kind Kind) (string, bool)
	Clear(kind Kind) error
	ClearAll() error

	// SetTokens replaces the auth and refresh tokens together. The refresh
	// coordinator relies on this so a failed write cannot leave one fresh
	// and one stale token behind.
	SetTokens(authToken, refreshToken string) error
}

func errStorageUnavailable(msg string) error {
	return dErrors.New(dErrors.CodeStorageUnavailable, msg)
}

func errInvalidKind(kind Kind) error {
	return dErrors.New(dErrors.CodeInvariantViolation, "unknown credential kind: "+string(kind))
}
