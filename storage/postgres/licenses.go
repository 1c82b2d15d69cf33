// Package pgstore provides the Postgres-backed license registry.
package pgstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/open-rails/recipemcp/license"
	"github.com/open-rails/recipemcp/recipe"
)

// Registry provides license lookups/mutations against the licensing schema.
// Reads run on the shared pool, so it is safe for concurrent requests.
type Registry struct {
	pg     *pgxpool.Pool
	schema string
}

// NewRegistry creates a registry over pg. Schema defaults to "licensing".
func NewRegistry(pg *pgxpool.Pool, schema string) *Registry {
	s := strings.TrimSpace(schema)
	if s == "" {
		s = "licensing"
	}
	return &Registry{pg: pg, schema: s}
}

func (r *Registry) licensesTable() string { return r.schema + ".licenses" }

// FindByPrefix implements license.Registry. Registry I/O failures are marked
// transient so callers can retry; an empty result is a deterministic miss.
func (r *Registry) FindByPrefix(ctx context.Context, prefix string) ([]license.License, error) {
	if r.pg == nil {
		return nil, recipe.Transientf("postgres pool is not configured")
	}
	if strings.TrimSpace(prefix) == "" {
		return nil, license.ErrLicenseNotFound
	}
	rows, err := r.pg.Query(ctx, `SELECT id, key_prefix, key_hash, status, scope, issued_at, expires_at, revoked_at FROM `+r.licensesTable()+` WHERE key_prefix=$1`, prefix)
	if err != nil {
		return nil, recipe.Transient(err)
	}
	defer rows.Close()

	var out []license.License
	for rows.Next() {
		var lic license.License
		var status string
		if err := rows.Scan(&lic.ID, &lic.KeyPrefix, &lic.KeyHash, &status, &lic.Scope, &lic.IssuedAt, &lic.ExpiresAt, &lic.RevokedAt); err != nil {
			return nil, recipe.Transient(err)
		}
		lic.Status = license.Status(status)
		out = append(out, lic)
	}
	if err := rows.Err(); err != nil {
		return nil, recipe.Transient(err)
	}
	if len(out) == 0 {
		return nil, license.ErrLicenseNotFound
	}
	return out, nil
}

// GetByID returns one license row.
func (r *Registry) GetByID(ctx context.Context, id uuid.UUID) (license.License, error) {
	if r.pg == nil {
		return license.License{}, recipe.Transientf("postgres pool is not configured")
	}
	var lic license.License
	var status string
	err := r.pg.QueryRow(ctx, `SELECT id, key_prefix, key_hash, status, scope, issued_at, expires_at, revoked_at FROM `+r.licensesTable()+` WHERE id=$1 LIMIT 1`, id).
		Scan(&lic.ID, &lic.KeyPrefix, &lic.KeyHash, &status, &lic.Scope, &lic.IssuedAt, &lic.ExpiresAt, &lic.RevokedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return license.License{}, license.ErrLicenseNotFound
	}
	if err != nil {
		return license.License{}, recipe.Transient(err)
	}
	lic.Status = license.Status(status)
	return lic, nil
}

// Insert records a newly issued license.
func (r *Registry) Insert(ctx context.Context, lic license.License) error {
	if r.pg == nil {
		return recipe.Transientf("postgres pool is not configured")
	}
	_, err := r.pg.Exec(ctx, `INSERT INTO `+r.licensesTable()+` (id, key_prefix, key_hash, status, scope, issued_at, expires_at) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		lic.ID, lic.KeyPrefix, lic.KeyHash, string(lic.Status), lic.Scope, lic.IssuedAt, lic.ExpiresAt)
	if err != nil {
		return recipe.Transient(err)
	}
	return nil
}

// Revoke marks a license revoked. Rows are never deleted; the registry is the
// audit trail.
func (r *Registry) Revoke(ctx context.Context, id uuid.UUID, at time.Time) error {
	if r.pg == nil {
		return recipe.Transientf("postgres pool is not configured")
	}
	tag, err := r.pg.Exec(ctx, `UPDATE `+r.licensesTable()+` SET status=$2, revoked_at=$3 WHERE id=$1`,
		id, string(license.StatusRevoked), at)
	if err != nil {
		return recipe.Transient(err)
	}
	if tag.RowsAffected() == 0 {
		return license.ErrLicenseNotFound
	}
	return nil
}

// MarkExpired transitions lapsed active licenses to expired. Run periodically
// so registry status matches wall-clock expiry.
func (r *Registry) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	if r.pg == nil {
		return 0, recipe.Transientf("postgres pool is not configured")
	}
	tag, err := r.pg.Exec(ctx, `UPDATE `+r.licensesTable()+` SET status=$2 WHERE status=$1 AND expires_at IS NOT NULL AND expires_at < $3`,
		string(license.StatusActive), string(license.StatusExpired), now)
	if err != nil {
		return 0, recipe.Transient(err)
	}
	return tag.RowsAffected(), nil
}
