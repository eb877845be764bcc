package httptransport

import (
	"strings"

	"gestor/internal/tenant"
	dErrors "gestor/pkg/domain-errors"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *loginRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

func (r *loginRequest) Validate() error {
	if r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if !strings.Contains(r.Email, "@") {
		return dErrors.New(dErrors.CodeValidation, "email is invalid")
	}
	if r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "password is required")
	}
	return nil
}

type switchTenantRequest struct {
	Vertical string `json:"vertical"`
	ClientID string `json:"client_id"`
}

func (r *switchTenantRequest) Normalize() {
	r.Vertical = strings.ToLower(strings.TrimSpace(r.Vertical))
	r.ClientID = strings.TrimSpace(r.ClientID)
}

func (r *switchTenantRequest) Validate() error {
	if r.Vertical == "" {
		return dErrors.New(dErrors.CodeValidation, "vertical is required")
	}
	if !tenant.Type(r.Vertical).Valid() {
		return dErrors.New(dErrors.CodeValidation, "unknown business vertical: "+r.Vertical)
	}
	if r.ClientID == "" {
		return dErrors.New(dErrors.CodeValidation, "client id is required")
	}
	return nil
}
