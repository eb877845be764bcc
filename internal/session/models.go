package session

import (
	"gestor/internal/backend"
	dErrors "gestor/pkg/domain-errors"
)

// Role is the principal's authorization level within its tenant.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleEmployee   Role = "employee"
	RoleClient     Role = "client"
	RoleGuest      Role = "guest"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleEmployee, RoleClient, RoleGuest:
		return true
	}
	return false
}

// Status is the principal's account state.
type Status string

const (
	StatusActive              Status = "active"
	StatusInactive            Status = "inactive"
	StatusSuspended           Status = "suspended"
	StatusPendingVerification Status = "pending_verification"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended, StatusPendingVerification:
		return true
	}
	return false
}

// Principal is the authenticated identity behind a request. It is created on
// login, refreshed from the identity endpoint on each resolve, and destroyed
// on logout or token expiry.
type Principal struct {
	ID            string
	TenantID      string
	Email         string
	Name          string
	Role          Role
	Status        Status
	EmailVerified bool
}

// PrincipalFromPayload converts the identity endpoint's payload into a
// Principal, rejecting unknown role or status values at the boundary rather
// than letting them propagate as free-form strings.
func PrincipalFromPayload(p *backend.PrincipalPayload) (*Principal, error) {
	role := Role(p.Role)
	if !role.Valid() {
		return nil, dErrors.New(dErrors.CodeMalformedResponse, "identity endpoint returned unknown role: "+p.Role)
	}
	status := Status(p.Status)
	if !status.Valid() {
		return nil, dErrors.New(dErrors.CodeMalformedResponse, "identity endpoint returned unknown status: "+p.Status)
	}
	return &Principal{
		ID:            p.ID,
		TenantID:      p.TenantID,
		Email:         p.Email,
		Name:          p.Name,
		Role:          role,
		Status:        status,
		EmailVerified: p.EmailVerified,
	}, nil
}

// DevPrincipal is the fixed identity the route gate injects when the
// development bypass is active. It never reaches production: config forces
// the bypass off there.
func DevPrincipal() *Principal {
	return &Principal{
		ID:            "dev-user",
		TenantID:      "dev",
		Email:         "dev@localhost",
		Name:          "Development User",
		Role:          RoleSuperAdmin,
		Status:        StatusActive,
		EmailVerified: true,
	}
}
