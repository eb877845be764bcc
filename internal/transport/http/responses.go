package httptransport

import (
	"gestor/internal/session"
	"gestor/internal/tenant"
)

type principalView struct {
	ID            string `json:"id"`
	TenantID      string `json:"tenant_id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	Status        string `json:"status"`
	EmailVerified bool   `json:"email_verified"`
}

func newPrincipalView(p *session.Principal) principalView {
	return principalView{
		ID:            p.ID,
		TenantID:      p.TenantID,
		Email:         p.Email,
		Name:          p.Name,
		Role:          string(p.Role),
		Status:        string(p.Status),
		EmailVerified: p.EmailVerified,
	}
}

type tenantView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Status string `json:"status"`
	Type   string `json:"type"`
	Plan   string `json:"plan"`
}

func newTenantView(t *tenant.Tenant) *tenantView {
	if t == nil {
		return nil
	}
	return &tenantView{
		ID:     t.ID,
		Name:   t.Name,
		Slug:   t.Slug,
		Status: string(t.Status),
		Type:   string(t.Type),
		Plan:   t.Plan,
	}
}

// sessionView is the principal plus the active tenant context, the shape every
// authenticated page reads first.
type sessionView struct {
	User           principalView `json:"user"`
	ActiveVertical string        `json:"active_vertical,omitempty"`
	ActiveTenant   *tenantView   `json:"active_tenant,omitempty"`
}

func newSessionView(p *session.Principal, snapshot tenant.Snapshot) sessionView {
	view := sessionView{User: newPrincipalView(p)}
	if snapshot.InTenantMode() {
		view.ActiveVertical = string(*snapshot.ActiveType)
		view.ActiveTenant = newTenantView(snapshot.ActiveClient)
	}
	return view
}
