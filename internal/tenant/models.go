// Package tenant manages the active tenant context behind a browser session:
// which business vertical the user is working in and which client record is
// scoped. Switching tenants rescopes the session token at the backend and
// commits the new context atomically.
package tenant

import (
	"gestor/internal/backend"
	dErrors "gestor/pkg/domain-errors"
)

// Type is the business vertical a tenant operates in.
type Type string

const (
	TypeClinica   Type = "clinica"
	TypeSalao     Type = "salao"
	TypeAutopecas Type = "autopecas"
	TypeOficina   Type = "oficina"
	TypePetshop   Type = "petshop"
	TypeComercio  Type = "comercio"
)

// Types lists every known vertical.
var Types = []Type{TypeClinica, TypeSalao, TypeAutopecas, TypeOficina, TypePetshop, TypeComercio}

// Valid reports whether t is a known vertical.
func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// Status is a tenant's subscription state.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
	StatusTrial     Status = "trial"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended, StatusTrial:
		return true
	}
	return false
}

// Operable reports whether a tenant in this state may be worked in.
func (s Status) Operable() bool {
	return s == StatusActive || s == StatusTrial
}

// Tenant is a client business the user can scope their session to.
type Tenant struct {
	ID     string
	Name   string
	Slug   string
	Status Status
	Type   Type
	Plan   string
}

// FromClientRecord converts the backend's client payload into a Tenant,
// rejecting unknown status or vertical values at the boundary.
func FromClientRecord(rec *backend.ClientRecord) (*Tenant, error) {
	status := Status(rec.Status)
	if !status.Valid() {
		return nil, dErrors.New(dErrors.CodeMalformedResponse, "client record carries unknown status: "+rec.Status)
	}
	typ := Type(rec.Type)
	if !typ.Valid() {
		return nil, dErrors.New(dErrors.CodeMalformedResponse, "client record carries unknown vertical: "+rec.Type)
	}
	return &Tenant{
		ID:     rec.ID,
		Name:   rec.Name,
		Slug:   rec.Slug,
		Status: status,
		Type:   typ,
		Plan:   rec.Plan,
	}, nil
}

// Snapshot is one session's tenant context at a point in time. Either both
// fields are set or both are nil; a half-populated context never exists.
type Snapshot struct {
	ActiveType   *Type
	ActiveClient *Tenant
}

// InTenantMode reports whether a tenant context is active.
func (s Snapshot) InTenantMode() bool {
	return s.ActiveType != nil && s.ActiveClient != nil
}

// clone copies the snapshot so callers can never mutate the manager's state
// through the returned pointers.
func (s Snapshot) clone() Snapshot {
	out := Snapshot{}
	if s.ActiveType != nil {
		typ := *s.ActiveType
		out.ActiveType = &typ
	}
	if s.ActiveClient != nil {
		client := *s.ActiveClient
		out.ActiveClient = &client
	}
	return out
}

// Pair is the persisted form of a tenant context: enough to restore the full
// snapshot on the next request by refetching the client record.
type Pair struct {
	Type     Type
	ClientID string
}
