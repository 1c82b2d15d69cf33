package memorystore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/open-rails/recipemcp/license"
	"github.com/open-rails/recipemcp/recipe"
)

func seed(t *testing.T) *RecipeStore {
	t.Helper()
	s := NewRecipeStore()
	err := s.Replace(context.Background(), []recipe.Recipe{
		{ID: "paywall-storekit", Title: "StoreKit Paywall", Tier: recipe.TierPro, Body: recipe.Body{Implementation: "..."}},
		{ID: "auth-cognito", Title: "Cognito Authentication", Tier: recipe.TierPro},
		{ID: "onboarding-flow", Title: "Onboarding Flow", Tier: recipe.TierFree},
	})
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	return s
}

func TestRecipeStoreListOrdered(t *testing.T) {
	s := seed(t)
	got, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"auth-cognito", "onboarding-flow", "paywall-storekit"}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("List[%d].ID = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestRecipeStoreListEmpty(t *testing.T) {
	s := NewRecipeStore()
	got, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("empty store listed %d items", len(got))
	}
}

func TestRecipeStoreGetNotFound(t *testing.T) {
	s := seed(t)
	_, err := s.Get(context.Background(), "missing")
	if !errors.Is(err, recipe.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRecipeStoreReplaceRejectsDuplicates(t *testing.T) {
	s := seed(t)
	err := s.Replace(context.Background(), []recipe.Recipe{
		{ID: "auth-cognito", Title: "A", Tier: recipe.TierFree},
		{ID: "auth-cognito", Title: "B", Tier: recipe.TierFree},
	})
	if err == nil {
		t.Fatal("expected duplicate id error")
	}
	// Previous content must survive a failed replace.
	if s.Len() != 3 {
		t.Errorf("store len = %d after failed replace, want 3", s.Len())
	}
}

func TestLicenseRegistryRoundTrip(t *testing.T) {
	reg := NewLicenseRegistry()
	lic := license.License{
		ID:        uuid.New(),
		KeyPrefix: "abc123",
		KeyHash:   "$2a$10$fakehash",
		Status:    license.StatusActive,
		Scope:     "v1",
		IssuedAt:  time.Now(),
	}
	if err := reg.Insert(context.Background(), lic); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	got, err := reg.FindByPrefix(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("FindByPrefix: %v", err)
	}
	if len(got) != 1 || got[0].ID != lic.ID {
		t.Errorf("FindByPrefix = %+v", got)
	}
	if _, err := reg.FindByPrefix(context.Background(), "nope"); !errors.Is(err, license.ErrLicenseNotFound) {
		t.Errorf("unknown prefix err = %v, want ErrLicenseNotFound", err)
	}
}

func TestLicenseRegistryRevokeKeepsRow(t *testing.T) {
	reg := NewLicenseRegistry()
	lic := license.License{ID: uuid.New(), KeyPrefix: "abc123", KeyHash: "h", Status: license.StatusActive}
	if err := reg.Insert(context.Background(), lic); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := reg.Revoke(context.Background(), lic.ID, time.Now()); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	got, err := reg.FindByPrefix(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("FindByPrefix after revoke: %v", err)
	}
	if got[0].Status != license.StatusRevoked || got[0].RevokedAt == nil {
		t.Errorf("revoked license = %+v", got[0])
	}
}
