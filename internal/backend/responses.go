package backend

import dErrors "gestor/pkg/domain-errors"

// Request bodies. Field names follow the API's wire contract.

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type switchTenantRequest struct {
	ClientID string `json:"client_id"`
}

// PrincipalPayload is the identity endpoint's view of the authenticated user.
type PrincipalPayload struct {
	ID            string `json:"id"`
	TenantID      string `json:"tenant_id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	Status        string `json:"status"`
	EmailVerified bool   `json:"email_verified"`
}

// validate enforces the exact response shape once at the boundary. The API
// historically wrapped some responses in a data envelope; the gateway accepts
// one shape only and fails fast on anything else.
func (p *PrincipalPayload) validate() error {
	if p.ID == "" || p.TenantID == "" {
		return dErrors.New(dErrors.CodeMalformedResponse, "identity endpoint returned an incomplete principal")
	}
	return nil
}

// LoginResponse is the login endpoint's success payload.
type LoginResponse struct {
	User         PrincipalPayload `json:"user"`
	Token        string           `json:"token"`
	RefreshToken string           `json:"refresh_token"`
	ClientID     string           `json:"client_id"`
}

func (r *LoginResponse) validate() error {
	if r.Token == "" {
		return dErrors.New(dErrors.CodeMalformedResponse, "Token não recebido do servidor")
	}
	if r.ClientID == "" {
		return dErrors.New(dErrors.CodeMalformedResponse, "Client ID não recebido do servidor")
	}
	if r.User.ID == "" {
		return dErrors.New(dErrors.CodeMalformedResponse, "login response is missing the user record")
	}
	return nil
}

// RefreshResponse carries the rotated token pair.
type RefreshResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

func (r *RefreshResponse) validate() error {
	if r.Token == "" || r.RefreshToken == "" {
		return dErrors.New(dErrors.CodeMalformedResponse, "refresh endpoint returned an incomplete token pair")
	}
	return nil
}

// SwitchTenantResponse carries the rescoped token. The refresh token is
// optional: some API versions rotate it on switch, some do not.
type SwitchTenantResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

func (r *SwitchTenantResponse) validate() error {
	if r.Token == "" {
		return dErrors.New(dErrors.CodeMalformedResponse, "Token não recebido do servidor")
	}
	return nil
}

// ClientRecord is the tenant/client-fetch endpoint's payload.
type ClientRecord struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Status string `json:"status"`
	Type   string `json:"type"`
	Plan   string `json:"plan"`
}

func (r *ClientRecord) validate() error {
	if r.ID == "" || r.Name == "" {
		return dErrors.New(dErrors.CodeMalformedResponse, "client record is incomplete")
	}
	return nil
}
