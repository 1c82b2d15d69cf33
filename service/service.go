// Package service is the transport-agnostic operation surface of the recipe
// server. It owns the authorization policy: stores stay tier-agnostic and
// validators stay store-agnostic, the service joins the two.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/open-rails/recipemcp/license"
	"github.com/open-rails/recipemcp/recipe"
)

const (
	defaultCallTimeout = 5 * time.Second
	storeAttempts      = 3
	retryBaseDelay     = 100 * time.Millisecond
)

// UpgradeMessage is returned in place of pro body content when the caller is
// not entitled. Redaction is a success-path payload: the calling assistant
// always gets a parseable result to relay.
const UpgradeMessage = "This is a Pro recipe. Purchase a license key at " +
	"https://swiftshiplabs.com/pro and pass it as `Authorization: Bearer sk-...` " +
	"to unlock the full implementation."

// Service dispatches list, get, and search operations against an injected
// store and validator. Safe for concurrent use; Service holds no per-request
// state.
type Service struct {
	store       recipe.Store
	validator   license.Validator
	audit       license.AuditLogger
	log         *logrus.Logger
	callTimeout time.Duration
	sleep       func(context.Context, time.Duration) error
}

// Option adjusts Service construction.
type Option func(*Service)

// WithCallTimeout bounds each store or validator call.
func WithCallTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.callTimeout = d
		}
	}
}

// WithAudit attaches a best-effort audit sink for entitlement decisions.
func WithAudit(audit license.AuditLogger) Option {
	return func(s *Service) {
		if audit != nil {
			s.audit = audit
		}
	}
}

// New builds a Service over store and validator.
func New(store recipe.Store, validator license.Validator, log *logrus.Logger, opts ...Option) *Service {
	if log == nil {
		log = logrus.New()
	}
	s := &Service{
		store:       store,
		validator:   validator,
		audit:       license.NopAudit{},
		log:         log,
		callTimeout: defaultCallTimeout,
		sleep:       sleepCtx,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns summaries for every recipe. Summaries never carry body
// content, so listing needs no entitlement check.
func (s *Service) List(ctx context.Context) ([]recipe.Summary, error) {
	var out []recipe.Summary
	err := s.withStoreRetry(ctx, "list", func(callCtx context.Context) error {
		var err error
		out, err = s.store.List(callCtx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []recipe.Summary{}
	}
	return out, nil
}

// Search returns summaries matching query in deterministic order. Summaries
// require no redaction regardless of tier.
func (s *Service) Search(ctx context.Context, query string) ([]recipe.Summary, error) {
	var out []recipe.Summary
	err := s.withStoreRetry(ctx, "search", func(callCtx context.Context) error {
		var err error
		out, err = s.store.Search(callCtx, query)
		return err
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []recipe.Summary{}
	}
	return out, nil
}

// Get resolves a recipe and applies the tier policy. The outcome is always a
// tagged Result; ErrNotFound never escapes as an error.
func (s *Service) Get(ctx context.Context, id, credential string) (Result, error) {
	if err := recipe.ValidateID(id); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if credential == "" {
		if c, ok := license.CredentialFromContext(ctx); ok {
			credential = c
		}
	}

	var doc recipe.Recipe
	err := s.withStoreRetry(ctx, "get", func(callCtx context.Context) error {
		var err error
		doc, err = s.store.Get(callCtx, id)
		return err
	})
	if errors.Is(err, recipe.ErrNotFound) {
		return NotFound(id), nil
	}
	if err != nil {
		return Result{}, err
	}

	if doc.Tier != recipe.TierPro {
		// Free recipes skip validation entirely.
		return Full(doc), nil
	}

	decision := s.decide(ctx, credential)
	if decision.Allowed {
		return Full(doc), nil
	}
	return Redacted(doc, decision.Reason), nil
}

// decide runs the validator with a bounded timeout and fails closed: any
// validator failure is treated as not allowed rather than leaking pro
// content or surfacing a hard error.
func (s *Service) decide(ctx context.Context, credential string) license.Decision {
	if s.validator == nil {
		s.log.Warn("no license validator configured, denying pro access")
		return license.Deny(license.ReasonKeyInvalid)
	}
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	decision, err := s.validator.Validate(callCtx, credential)
	if err != nil {
		s.log.WithError(err).WithField("op", "validate").
			Warn("license validator unavailable, failing closed")
		decision = license.Deny(license.ReasonKeyInvalid)
	}
	prefix := ""
	if p, _, splitErr := license.SplitKey(credential); splitErr == nil {
		prefix = p
	}
	s.audit.LogValidation(ctx, prefix, decision, clientInfoFromContext(ctx))
	return decision
}

// withStoreRetry runs fn with a per-call timeout, retrying transient store
// failures with exponential backoff. Deterministic outcomes (ErrNotFound,
// invalid input) return immediately.
func (s *Service) withStoreRetry(ctx context.Context, op string, fn func(context.Context) error) error {
	if s.store == nil {
		return recipe.Transientf("recipe store is not configured")
	}
	delay := retryBaseDelay
	var lastErr error
	for attempt := 1; attempt <= storeAttempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
		err := fn(callCtx)
		cancel()
		if err == nil {
			return nil
		}
		if !recipe.IsTransient(err) {
			return err
		}
		lastErr = err
		s.log.WithError(err).WithFields(logrus.Fields{"op": op, "attempt": attempt}).
			Warn("transient store failure")
		if attempt == storeAttempts {
			break
		}
		if err := s.sleep(ctx, delay); err != nil {
			return lastErr
		}
		delay *= 2
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type clientInfoKey struct{}

// WithClientInfo attaches transport-level caller metadata (user agent, MCP
// client name) to ctx for audit records.
func WithClientInfo(ctx context.Context, info string) context.Context {
	return context.WithValue(ctx, clientInfoKey{}, info)
}

func clientInfoFromContext(ctx context.Context) string {
	s, _ := ctx.Value(clientInfoKey{}).(string)
	return s
}
