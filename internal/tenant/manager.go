package tenant

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"gestor/internal/backend"
	"gestor/internal/credentials"
	"gestor/internal/platform/metrics"
	dErrors "gestor/pkg/domain-errors"
)

// API is the slice of the business API the tenant layer depends on.
type API interface {
	FetchClient(ctx context.Context, token, clientID string) (*backend.ClientRecord, error)
	SwitchTenant(ctx context.Context, token, clientID string) (*backend.SwitchTenantResponse, error)
}

// Manager owns the per-session tenant contexts. A switch is an all-or-nothing
// operation: the context, the persisted pair, and the credential mirror are
// only touched after the backend accepted the switch, and the in-memory
// snapshot is replaced as a whole struct so readers never observe a vertical
// from one tenant next to the client record of another.
type Manager struct {
	api     API
	pairs   PairStore
	logger  *slog.Logger
	metrics *metrics.Metrics

	// mu serializes switches and guards contexts.
	mu       sync.Mutex
	contexts map[string]Snapshot
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithMetrics enables metric reporting.
func WithMetrics(mx *metrics.Metrics) Option {
	return func(m *Manager) {
		m.metrics = mx
	}
}

// NewManager builds a tenant context manager over the given API client and
// pair store.
func NewManager(api API, pairs PairStore, opts ...Option) *Manager {
	m := &Manager{
		api:      api,
		pairs:    pairs,
		contexts: make(map[string]Snapshot),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	return m
}

// Snapshot returns a copy of the session's current tenant context. The zero
// snapshot means the session is outside tenant mode.
func (m *Manager) Snapshot(sessionKey string) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.contexts[sessionKey].clone()
}

// SwitchTenant scopes the session to the given client within a vertical.
//
// The flow is fetch, rescope, commit: the client record is validated first,
// the backend rescopes the token, and only then is anything written. Any
// failure before the commit leaves the previous context fully intact.
func (m *Manager) SwitchTenant(ctx context.Context, sessionKey string, store credentials.Store, typ Type, clientID string) (Snapshot, error) {
	if !typ.Valid() {
		return Snapshot{}, dErrors.New(dErrors.CodeValidation, "unknown business vertical: "+string(typ))
	}
	if clientID == "" {
		return Snapshot{}, dErrors.New(dErrors.CodeValidation, "client id is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	token, ok := store.Get(credentials.KindAuthToken)
	if !ok {
		return Snapshot{}, dErrors.New(dErrors.CodeUnauthenticated, "no credentials")
	}

	rec, err := m.api.FetchClient(ctx, token, clientID)
	if err != nil {
		return Snapshot{}, err
	}
	client, err := FromClientRecord(rec)
	if err != nil {
		return Snapshot{}, err
	}
	if client.Type != typ {
		return Snapshot{}, dErrors.New(dErrors.CodeValidation, "client does not belong to the requested vertical")
	}
	if !client.Status.Operable() {
		return Snapshot{}, dErrors.New(dErrors.CodeForbidden, "client is not active")
	}

	resp, err := m.api.SwitchTenant(ctx, token, clientID)
	if err != nil {
		return Snapshot{}, err
	}

	// Commit. Credentials first, then the persisted pair, then the snapshot.
	if resp.RefreshToken != "" {
		err = store.SetTokens(resp.Token, resp.RefreshToken)
	} else {
		err = store.Set(credentials.KindAuthToken, resp.Token)
	}
	if err != nil {
		return Snapshot{}, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "could not persist rescoped token")
	}
	if err := store.Set(credentials.KindClientID, clientID); err != nil {
		return Snapshot{}, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "could not persist tenant id")
	}
	if err := m.pairs.Save(sessionKey, Pair{Type: typ, ClientID: clientID}); err != nil {
		return Snapshot{}, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "could not persist tenant context")
	}

	snapshot := Snapshot{ActiveType: &typ, ActiveClient: client}
	m.contexts[sessionKey] = snapshot

	m.metrics.IncrementTenantSwitches(string(typ))
	m.logger.InfoContext(ctx, "tenant switched",
		"event", "tenant_switched",
		"log_type", "audit",
		"vertical", string(typ),
		"client_id", clientID,
	)
	return snapshot.clone(), nil
}

// ExitTenantMode drops the session's tenant context and restores the
// principal's home tenant id into the credential mirror. The caller navigates
// back to the admin root afterwards.
func (m *Manager) ExitTenantMode(ctx context.Context, sessionKey string, store credentials.Store, principalTenantID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.contexts, sessionKey)
	if err := m.pairs.Delete(sessionKey); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "could not drop persisted tenant context")
	}
	if principalTenantID != "" {
		if err := store.Set(credentials.KindClientID, principalTenantID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "could not restore home tenant id")
		}
	}

	m.logger.InfoContext(ctx, "tenant mode exited",
		"event", "tenant_mode_exited",
		"log_type", "audit",
	)
	return nil
}

// Restore rebuilds the session's tenant context after a server restart or on
// a fresh node. The persisted pair is authoritative; the URL path is only a
// hint and never creates a context by itself.
func (m *Manager) Restore(ctx context.Context, sessionKey string, store credentials.Store, path string) (Snapshot, error) {
	m.mu.Lock()
	if snapshot, ok := m.contexts[sessionKey]; ok {
		m.mu.Unlock()
		return snapshot.clone(), nil
	}
	m.mu.Unlock()

	pair, ok := m.pairs.Load(sessionKey)
	if !ok {
		if typ, inferred := InferTypeFromPath(path); inferred {
			m.logger.DebugContext(ctx, "tenant vertical inferred from path without a persisted context",
				"vertical", string(typ),
			)
		}
		return Snapshot{}, nil
	}

	token, hasToken := store.Get(credentials.KindAuthToken)
	if !hasToken {
		return Snapshot{}, dErrors.New(dErrors.CodeUnauthenticated, "no credentials")
	}

	rec, err := m.api.FetchClient(ctx, token, pair.ClientID)
	if err != nil {
		// A tenant that vanished or a rejected token invalidates the pair;
		// transient failures keep it so a later request can retry.
		if dErrors.HasCode(err, dErrors.CodeNotFound) || dErrors.HasCode(err, dErrors.CodeUnauthenticated) {
			_ = m.pairs.Delete(sessionKey)
			return Snapshot{}, nil
		}
		return Snapshot{}, err
	}
	client, err := FromClientRecord(rec)
	if err != nil {
		return Snapshot{}, err
	}

	typ := pair.Type
	snapshot := Snapshot{ActiveType: &typ, ActiveClient: client}

	m.mu.Lock()
	m.contexts[sessionKey] = snapshot
	restored := m.contexts[sessionKey].clone()
	m.mu.Unlock()

	m.logger.InfoContext(ctx, "tenant context restored",
		"event", "tenant_context_restored",
		"log_type", "audit",
		"vertical", string(typ),
		"client_id", pair.ClientID,
	)
	return restored, nil
}

// InferTypeFromPath extracts the vertical from a tenant-scoped URL of the
// form /t/{vertical}/... . It is a routing hint only.
func InferTypeFromPath(path string) (Type, bool) {
	trimmed := strings.TrimPrefix(path, "/")
	parts := strings.SplitN(trimmed, "/", 3)
	if len(parts) < 2 || parts[0] != "t" {
		return "", false
	}
	typ := Type(parts[1])
	if !typ.Valid() {
		return "", false
	}
	return typ, true
}
