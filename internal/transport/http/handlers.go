package httptransport

import (
	"log/slog"
	"net/http"

	"gestor/internal/credentials"
	"gestor/internal/gate"
	"gestor/internal/platform/middleware"
	"gestor/internal/session"
	"gestor/internal/tenant"
	"gestor/pkg/httputil"
)

// Handler is the thin HTTP layer. It builds a cookie-backed credential store
// per request and delegates to the session and tenant services; no business
// logic lives here.
type Handler struct {
	sessions      *session.Service
	tenants       *tenant.Manager
	logger        *slog.Logger
	secureCookies bool
	ttls          credentials.TTLs
}

// NewHandler wires the transport layer. secureCookies must be true in
// production.
func NewHandler(sessions *session.Service, tenants *tenant.Manager, secureCookies bool, logger *slog.Logger) *Handler {
	return &Handler{
		sessions:      sessions,
		tenants:       tenants,
		logger:        logger,
		secureCookies: secureCookies,
		ttls:          credentials.DefaultTTLs(),
	}
}

func (h *Handler) store(w http.ResponseWriter, r *http.Request) *credentials.CookieStore {
	return credentials.NewCookieStore(w, r, h.secureCookies, h.ttls)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[loginRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}

	store := h.store(w, r)
	principal, err := h.sessions.Login(ctx, store, session.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteResult(w, http.StatusOK, newSessionView(principal, h.tenants.Snapshot(principal.ID)))
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.sessions.Logout(ctx, h.store(w, r)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteResult(w, http.StatusOK, nil)
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	store := h.store(w, r)

	principal, err := h.sessions.ResolveWithRefresh(ctx, store)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	snapshot, err := h.tenants.Restore(ctx, principal.ID, store, r.URL.Path)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteResult(w, http.StatusOK, newSessionView(principal, snapshot))
}

func (h *Handler) handleSwitchTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[switchTenantRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}

	store := h.store(w, r)
	principal, err := h.sessions.ResolveWithRefresh(ctx, store)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	snapshot, err := h.tenants.SwitchTenant(ctx, principal.ID, store, tenant.Type(req.Vertical), req.ClientID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteResult(w, http.StatusOK, newSessionView(principal, snapshot))
}

func (h *Handler) handleExitTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	store := h.store(w, r)

	principal, err := h.sessions.ResolveWithRefresh(ctx, store)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.tenants.ExitTenantMode(ctx, principal.ID, store, principal.TenantID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteResult(w, http.StatusOK, map[string]string{"redirect": "/dashboard"})
}

// handleDashboard is the protected probe: it resolves the full session the way
// every page behind the gate would, honoring the development bypass.
func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if principal, ok := gate.PrincipalFromContext(ctx); ok {
		httputil.WriteResult(w, http.StatusOK, newSessionView(principal, tenant.Snapshot{}))
		return
	}

	store := h.store(w, r)
	principal, err := h.sessions.ResolveWithRefresh(ctx, store)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	snapshot, err := h.tenants.Restore(ctx, principal.ID, store, r.URL.Path)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteResult(w, http.StatusOK, newSessionView(principal, snapshot))
}
