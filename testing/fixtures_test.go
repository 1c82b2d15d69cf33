package testing

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"
)

func TestValidatorAcceptsIssuedKey(t *testing.T) {
	tl := NewTestLicensing()
	defer tl.Close()

	key := tl.IssueKey("v1")
	decision, err := tl.Validator().Validate(context.Background(), key)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !decision.Allowed || decision.Scope != "v1" {
		t.Errorf("decision = %+v", decision)
	}
}

func TestValidatorAcceptsOfflineToken(t *testing.T) {
	tl := NewTestLicensing()
	defer tl.Close()

	token := tl.IssueToken("v2")
	decision, err := tl.Validator().Validate(context.Background(), token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !decision.Allowed || decision.Scope != "v2" {
		t.Errorf("decision = %+v", decision)
	}
}

func TestValidatorRejectsExpiredKey(t *testing.T) {
	tl := NewTestLicensing()
	defer tl.Close()

	past := time.Now().Add(-time.Hour)
	key := tl.IssueKeyExpiring("v1", &past)
	decision, err := tl.Validator().Validate(context.Background(), key)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if decision.Allowed {
		t.Error("expired key must be denied")
	}
}

func TestJWKSEndpoint(t *testing.T) {
	tl := NewTestLicensing()
	defer tl.Close()

	resp, err := http.Get(tl.JWKSURL())
	if err != nil {
		t.Fatalf("GET jwks: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var doc struct {
		Keys []struct {
			KID string `json:"kid"`
		} `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(doc.Keys) != 1 || doc.Keys[0].KID != tl.Issuer.KID() {
		t.Errorf("keys = %+v", doc.Keys)
	}
}

func TestSeededStore(t *testing.T) {
	store := SeededStore()
	items, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != len(SampleRecipes()) {
		t.Errorf("listed %d recipes, want %d", len(items), len(SampleRecipes()))
	}
}
