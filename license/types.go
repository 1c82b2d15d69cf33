// Package license decides whether a presented credential entitles the caller
// to pro recipe content.
package license

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a license.
type Status string

const (
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
	StatusExpired Status = "expired"
)

// License is a purchased entitlement record. Licenses are mutated on
// revocation or expiry but never deleted; the registry is the audit trail.
//
// The bearer key itself is never stored: only its bcrypt hash plus a short
// lookup prefix survive issuance.
type License struct {
	ID        uuid.UUID  `json:"id"`
	KeyPrefix string     `json:"key_prefix"`
	KeyHash   string     `json:"-"`
	Status    Status     `json:"status"`
	Scope     string     `json:"scope"`
	IssuedAt  time.Time  `json:"issued_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

// Effective returns the status after applying wall-clock expiry. A license
// whose ExpiresAt has passed reports StatusExpired even if the registry row
// has not been updated yet.
func (l License) Effective(now time.Time) Status {
	if l.Status == StatusActive && l.ExpiresAt != nil && now.After(*l.ExpiresAt) {
		return StatusExpired
	}
	return l.Status
}

// Reason explains an entitlement decision.
type Reason string

const (
	// ReasonNoKey means no credential accompanied the request. This is the
	// normal free-tier state, not an error.
	ReasonNoKey Reason = "no-key-provided"
	// ReasonKeyInvalid means the credential is not in the registry.
	ReasonKeyInvalid Reason = "key-invalid"
	// ReasonKeyExpired covers both expired and revoked keys; the remedy is
	// the same either way, so callers see one reason.
	ReasonKeyExpired Reason = "key-expired"
	// ReasonTierFree means no entitlement was needed.
	ReasonTierFree Reason = "tier-free"
	// ReasonTierCovered means the credential unlocks pro content.
	ReasonTierCovered Reason = "tier-covered"
)

// Decision is the derived entitlement outcome for one request. It is never
// persisted.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  Reason `json:"reason"`
	// Scope is the entitlement scope of the matched license, empty when no
	// license matched.
	Scope string `json:"scope,omitempty"`
}

// Deny returns a not-allowed decision with the given reason.
func Deny(reason Reason) Decision { return Decision{Allowed: false, Reason: reason} }

// Allow returns an allowed decision covering scope.
func Allow(scope string) Decision {
	return Decision{Allowed: true, Reason: ReasonTierCovered, Scope: scope}
}
