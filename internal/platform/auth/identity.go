package auth

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnknownIdentity is returned when an external id has no active principal.
var ErrUnknownIdentity = errors.New("unknown identity")

// IdentityResolver maps an external identity (an ABHA id) to an internal
// principal.
type IdentityResolver interface {
	Resolve(ctx context.Context, externalID string) (*Principal, error)
}

// StaticResolver resolves identities from a fixed set of principals. It backs
// tests and fixed deployments and is read-only after construction.
type StaticResolver struct {
	principals map[string]*Principal
}

// NewStaticResolver creates a resolver over principals keyed by ExternalID.
func NewStaticResolver(principals ...*Principal) *StaticResolver {
	r := &StaticResolver{principals: make(map[string]*Principal, len(principals))}
	for _, p := range principals {
		r.principals[p.ExternalID] = p
	}
	return r
}

func (r *StaticResolver) Resolve(_ context.Context, externalID string) (*Principal, error) {
	p, ok := r.principals[externalID]
	if !ok {
		return nil, fmt.Errorf("resolve %q: %w", externalID, ErrUnknownIdentity)
	}
	cp := *p
	return &cp, nil
}
