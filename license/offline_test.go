package license

import (
	"context"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newIssuerAndValidator(t *testing.T) (*OfflineIssuer, *OfflineValidator) {
	t.Helper()
	issuer, err := NewOfflineIssuer(2048, "lic-2026-01")
	if err != nil {
		t.Fatalf("NewOfflineIssuer: %v", err)
	}
	v := NewOfflineValidator(map[string]*rsa.PublicKey{issuer.KID(): issuer.PublicKey()})
	return issuer, v
}

func TestOfflineTokenRoundTrip(t *testing.T) {
	issuer, v := newIssuerAndValidator(t)
	token, err := issuer.Issue("buyer@example.com", "v1", time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !IsOfflineToken(token) {
		t.Fatalf("token %q missing lic_ scheme", token[:8])
	}
	got, err := v.Validate(context.Background(), token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !got.Allowed || got.Reason != ReasonTierCovered || got.Scope != "v1" {
		t.Errorf("decision = %+v, want allowed tier-covered v1", got)
	}
}

func TestOfflineTokenExpired(t *testing.T) {
	issuer, v := newIssuerAndValidator(t)
	token, err := issuer.Issue("buyer@example.com", "v1", time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	v.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	got, err := v.Validate(context.Background(), token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got.Allowed || got.Reason != ReasonKeyExpired {
		t.Errorf("decision = %+v, want key-expired", got)
	}
}

func TestOfflineTokenWrongSigner(t *testing.T) {
	_, v := newIssuerAndValidator(t)
	other, err := NewOfflineIssuer(2048, "lic-2026-01")
	if err != nil {
		t.Fatalf("NewOfflineIssuer: %v", err)
	}
	token, err := other.Issue("buyer@example.com", "v1", time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	got, err := v.Validate(context.Background(), token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got.Allowed || got.Reason != ReasonKeyInvalid {
		t.Errorf("decision = %+v, want key-invalid", got)
	}
}

func TestOfflineValidatorIgnoresRegistryKeys(t *testing.T) {
	_, v := newIssuerAndValidator(t)
	got, err := v.Validate(context.Background(), "sk-abc-def")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got.Allowed || got.Reason != ReasonKeyInvalid {
		t.Errorf("decision = %+v, want key-invalid fall-through", got)
	}
}

func TestServeJWKSConditionalGet(t *testing.T) {
	issuer, v := newIssuerAndValidator(t)
	ks := BuildJWKS(v.PublicKeys())
	if len(ks.Keys) != 1 || ks.Keys[0].Kid != issuer.KID() {
		t.Fatalf("unexpected jwks: %+v", ks)
	}

	rec := httptest.NewRecorder()
	ServeJWKS(rec, httptest.NewRequest(http.MethodGet, "/.well-known/jwks.json", nil), ks)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	etag := rec.Header().Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}

	req := httptest.NewRequest(http.MethodGet, "/.well-known/jwks.json", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	ServeJWKS(rec, req, ks)
	if rec.Code != http.StatusNotModified {
		t.Errorf("conditional status = %d, want 304", rec.Code)
	}
}
