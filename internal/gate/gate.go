// Package gate is the route protection layer. It decides, per request path,
// whether the request passes, gets redirected to the login page, or gets
// bounced back to the dashboard. The decision is deliberately cheap: it looks
// at cookie presence only and never calls the identity endpoint, leaving full
// verification to the handler behind the gate.
package gate

import (
	"strings"

	"gestor/internal/session"
)

// State classifies a request after the gate has looked at it.
type State string

const (
	// StatePublic marks a request outside the protected area.
	StatePublic State = "public"
	// StateProtectedUnresolved marks a protected request that carries
	// credentials the handler still has to verify.
	StateProtectedUnresolved State = "protected_unresolved"
	// StateProtectedAuthenticated marks a protected request admitted with
	// the development bypass principal.
	StateProtectedAuthenticated State = "protected_authenticated"
	// StateProtectedDenied marks a protected request without credentials.
	StateProtectedDenied State = "protected_denied"
)

// Decision is the gate's verdict for one request.
type Decision struct {
	State State
	// Redirect, when non-empty, is where the request should be sent instead
	// of being served.
	Redirect string
	// Principal is set only when the development bypass admitted the request.
	Principal *session.Principal
}

// Policy holds the gate's routing rules.
type Policy struct {
	// ProtectedPrefix guards everything beneath it.
	ProtectedPrefix string
	// ProtectedRoot is where an already-signed-in visit to the login page
	// lands.
	ProtectedRoot string
	// LoginPath is where denied requests are sent.
	LoginPath string
	// PublicPaths are exact-match paths always open; a trailing "*" makes
	// the entry a prefix match.
	PublicPaths []string
	// DevBypass admits credential-less protected requests with the fixed
	// development principal. Config forces it off in production.
	DevBypass bool
}

// DefaultPolicy returns the gateway's routing rules.
func DefaultPolicy() Policy {
	return Policy{
		ProtectedPrefix: "/dashboard",
		ProtectedRoot:   "/dashboard",
		LoginPath:       "/login",
		PublicPaths:     []string{"/", "/login", "/health*", "/metrics", "/static/*"},
	}
}

// Decide classifies one request. It is a pure function of the path and the
// presence of an auth cookie, which keeps it unit-testable without a server.
func (p Policy) Decide(path string, hasAuthCookie bool) Decision {
	if path == p.LoginPath && hasAuthCookie {
		return Decision{State: StatePublic, Redirect: p.ProtectedRoot}
	}

	if !p.protected(path) {
		return Decision{State: StatePublic}
	}

	if hasAuthCookie {
		return Decision{State: StateProtectedUnresolved}
	}
	if p.DevBypass {
		return Decision{State: StateProtectedAuthenticated, Principal: session.DevPrincipal()}
	}
	return Decision{State: StateProtectedDenied, Redirect: p.LoginPath}
}

func (p Policy) protected(path string) bool {
	for _, public := range p.PublicPaths {
		if prefix, ok := strings.CutSuffix(public, "*"); ok {
			if strings.HasPrefix(path, prefix) {
				return false
			}
		} else if path == public {
			return false
		}
	}
	return path == p.ProtectedPrefix || strings.HasPrefix(path, p.ProtectedPrefix+"/")
}
