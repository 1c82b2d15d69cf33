package memorystore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/open-rails/recipemcp/license"
)

// LicenseRegistry is an in-memory implementation of license.Registry.
// Licenses are never deleted, matching the audit semantics of the durable
// registry; revocation mutates status in place.
type LicenseRegistry struct {
	mu       sync.RWMutex
	byPrefix map[string][]license.License
	byID     map[uuid.UUID]license.License
}

// NewLicenseRegistry creates an empty in-memory registry.
func NewLicenseRegistry() *LicenseRegistry {
	return &LicenseRegistry{
		byPrefix: make(map[string][]license.License),
		byID:     make(map[uuid.UUID]license.License),
	}
}

// Insert records a license.
func (r *LicenseRegistry) Insert(_ context.Context, lic license.License) error {
	if lic.ID == uuid.Nil {
		return fmt.Errorf("license id is required")
	}
	if lic.KeyPrefix == "" || lic.KeyHash == "" {
		return fmt.Errorf("license key prefix and hash are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.byID[lic.ID]; dup {
		return fmt.Errorf("license %s already exists", lic.ID)
	}
	r.byID[lic.ID] = lic
	r.byPrefix[lic.KeyPrefix] = append(r.byPrefix[lic.KeyPrefix], lic)
	return nil
}

// Revoke marks a license revoked, keeping the row for audit.
func (r *LicenseRegistry) Revoke(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	lic, ok := r.byID[id]
	if !ok {
		return license.ErrLicenseNotFound
	}
	lic.Status = license.StatusRevoked
	lic.RevokedAt = &at
	r.byID[id] = lic
	recs := r.byPrefix[lic.KeyPrefix]
	for i := range recs {
		if recs[i].ID == id {
			recs[i] = lic
		}
	}
	return nil
}

// FindByPrefix implements license.Registry.
func (r *LicenseRegistry) FindByPrefix(_ context.Context, prefix string) ([]license.License, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	recs, ok := r.byPrefix[prefix]
	if !ok || len(recs) == 0 {
		return nil, license.ErrLicenseNotFound
	}
	out := make([]license.License, len(recs))
	copy(out, recs)
	return out, nil
}
