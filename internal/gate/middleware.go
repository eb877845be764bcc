package gate

import (
	"context"
	"log/slog"
	"net/http"

	"gestor/internal/credentials"
	"gestor/internal/session"
)

type stateKey struct{}
type principalKey struct{}

// Middleware applies the policy to every request: pass, redirect to the login
// page, or bounce a signed-in login visit back to the dashboard. The decision
// state, and the bypass principal when one was injected, are stashed in the
// request context for the handlers behind the gate.
func Middleware(policy Policy, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, hasAuthCookie := readAuthCookie(r)
			decision := policy.Decide(r.URL.Path, hasAuthCookie)

			if decision.Redirect != "" {
				if decision.State == StateProtectedDenied {
					logger.InfoContext(r.Context(), "unauthenticated request redirected",
						"event", "gate_denied",
						"log_type", "audit",
						"path", r.URL.Path,
					)
				}
				http.Redirect(w, r, decision.Redirect, http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), stateKey{}, decision.State)
			if decision.Principal != nil {
				ctx = context.WithValue(ctx, principalKey{}, decision.Principal)
				logger.WarnContext(ctx, "development bypass admitted a request",
					"event", "gate_dev_bypass",
					"log_type", "audit",
					"path", r.URL.Path,
				)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func readAuthCookie(r *http.Request) (string, bool) {
	c, err := r.Cookie(string(credentials.KindAuthToken))
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// StateFromContext returns the gate state stashed by the middleware.
func StateFromContext(ctx context.Context) (State, bool) {
	state, ok := ctx.Value(stateKey{}).(State)
	return state, ok
}

// PrincipalFromContext returns the development bypass principal, if the gate
// injected one for this request.
func PrincipalFromContext(ctx context.Context) (*session.Principal, bool) {
	principal, ok := ctx.Value(principalKey{}).(*session.Principal)
	return principal, ok
}
