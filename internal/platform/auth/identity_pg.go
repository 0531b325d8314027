package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type identityRepoPG struct{ pool *pgxpool.Pool }

// NewIdentityRepoPG resolves identities against the users table.
func NewIdentityRepoPG(pool *pgxpool.Pool) IdentityResolver { return &identityRepoPG{pool: pool} }

func (r *identityRepoPG) Resolve(ctx context.Context, externalID string) (*Principal, error) {
	var p Principal
	err := r.pool.QueryRow(ctx,
		`SELECT id, abha_id, name, role, hospital_id
		 FROM users
		 WHERE abha_id = $1 AND is_active`, externalID).
		Scan(&p.ID, &p.ExternalID, &p.Name, &p.Role, &p.FacilityID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("resolve %q: %w", externalID, ErrUnknownIdentity)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve identity: %w", err)
	}
	return &p, nil
}
