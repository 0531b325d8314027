package auth

import (
	"context"

	"github.com/google/uuid"
)

// Roles recognised by the service.
const (
	RoleDoctor     = "doctor"
	RoleAdmin      = "admin"
	RoleGovernment = "government"
)

var validRoles = map[string]bool{
	RoleDoctor: true, RoleAdmin: true, RoleGovernment: true,
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return validRoles[role]
}

// Principal is the authenticated user a request acts on behalf of.
type Principal struct {
	ID         uuid.UUID  `json:"id"`
	ExternalID string     `json:"abha_id"`
	Name       string     `json:"name"`
	Role       string     `json:"role"`
	FacilityID *uuid.UUID `json:"hospital_id,omitempty"`
}

// HasRole reports whether the principal holds any of roles.
func (p *Principal) HasRole(roles ...string) bool {
	if p == nil {
		return false
	}
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

type contextKey string

const principalKey contextKey = "principal"

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the principal stored by the auth middleware.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok && p != nil
}
