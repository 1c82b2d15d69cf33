package license

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/open-rails/recipemcp/recipe"
)

// Validator decides whether a presented credential entitles the caller to pro
// content. Safe to call on every tier-gated request; implementations may cache
// transparently as long as revocations propagate within a bounded window.
type Validator interface {
	// Validate maps a credential (possibly empty) to a Decision. An error is
	// returned only for infrastructure failures; deterministic outcomes
	// (absent, unknown, revoked, expired keys) are Decisions, not errors.
	Validate(ctx context.Context, credential string) (Decision, error)
}

// Registry looks up license records. Implementations return an error wrapping
// ErrLicenseNotFound for unknown prefixes and mark I/O failures transient.
type Registry interface {
	// FindByPrefix returns every license whose key prefix matches. Prefixes
	// are short, so collisions are possible and callers must verify the hash.
	FindByPrefix(ctx context.Context, prefix string) ([]License, error)
}

// ErrLicenseNotFound reports a prefix with no registry rows.
var ErrLicenseNotFound = errors.New("license not found")

// RegistryValidator validates opaque sk- keys against a license registry.
type RegistryValidator struct {
	registry Registry
	now      func() time.Time
}

// NewRegistryValidator builds a validator over registry.
func NewRegistryValidator(registry Registry) *RegistryValidator {
	return &RegistryValidator{registry: registry, now: time.Now}
}

// Validate implements Validator.
func (v *RegistryValidator) Validate(ctx context.Context, credential string) (Decision, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return Deny(ReasonNoKey), nil
	}
	prefix, secret, err := SplitKey(credential)
	if err != nil {
		return Deny(ReasonKeyInvalid), nil
	}
	if v.registry == nil {
		return Decision{}, recipe.Transientf("license registry is not configured")
	}
	records, err := v.registry.FindByPrefix(ctx, prefix)
	if err != nil {
		if errors.Is(err, ErrLicenseNotFound) {
			return Deny(ReasonKeyInvalid), nil
		}
		return Decision{}, err
	}
	for _, rec := range records {
		ok, err := VerifyKeyHash(rec.KeyHash, secret)
		if err != nil || !ok {
			continue
		}
		if rec.Effective(v.now()) != StatusActive {
			return Deny(ReasonKeyExpired), nil
		}
		return Allow(rec.Scope), nil
	}
	return Deny(ReasonKeyInvalid), nil
}

// Chain tries validators in order and returns the first decision that is not
// key-invalid, so offline tokens and registry keys can coexist behind one
// Validator. Infrastructure errors short-circuit.
type Chain []Validator

// Validate implements Validator.
func (c Chain) Validate(ctx context.Context, credential string) (Decision, error) {
	if strings.TrimSpace(credential) == "" {
		return Deny(ReasonNoKey), nil
	}
	last := Deny(ReasonKeyInvalid)
	for _, v := range c {
		decision, err := v.Validate(ctx, credential)
		if err != nil {
			return Decision{}, err
		}
		if decision.Allowed || decision.Reason != ReasonKeyInvalid {
			return decision, nil
		}
		last = decision
	}
	return last, nil
}
