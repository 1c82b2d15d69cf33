// Package testing provides fixtures for testing applications that embed the
// recipe server: a seeded license registry, a mock offline-license issuer
// serving JWKS, and a canned recipe set.
//
// Example usage:
//
//	lic := testing.NewTestLicensing()
//	defer lic.Close()
//
//	key := lic.IssueKey("v1")          // registry-backed key
//	token := lic.IssueToken("v1")      // offline lic_ token
//	jwksURL := lic.JWKSURL()           // serves the verification keys
package testing

import (
	"context"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/google/uuid"

	"github.com/open-rails/recipemcp/license"
	"github.com/open-rails/recipemcp/recipe"
	memorystore "github.com/open-rails/recipemcp/storage/memory"
)

// TestLicensing bundles everything a test needs to exercise both validation
// paths: an in-memory registry for sk- keys and an RSA issuer for offline
// lic_ tokens, with the public keys served over HTTP as JWKS.
type TestLicensing struct {
	Registry *memorystore.LicenseRegistry
	Issuer   *license.OfflineIssuer

	server *httptest.Server
}

// NewTestLicensing creates the fixture. Call Close when done.
func NewTestLicensing() *TestLicensing {
	issuer, err := license.NewOfflineIssuer(2048, "test-key-1")
	if err != nil {
		panic("failed to create offline issuer: " + err.Error())
	}
	tl := &TestLicensing{
		Registry: memorystore.NewLicenseRegistry(),
		Issuer:   issuer,
	}
	ks := license.BuildJWKS(map[string]*rsa.PublicKey{issuer.KID(): issuer.PublicKey()})
	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/jwks.json", func(w http.ResponseWriter, r *http.Request) {
		license.ServeJWKS(w, r, ks)
	})
	tl.server = httptest.NewServer(mux)
	return tl
}

// Close shuts down the JWKS server.
func (tl *TestLicensing) Close() {
	tl.server.Close()
}

// JWKSURL returns the URL serving the offline verification keys.
func (tl *TestLicensing) JWKSURL() string {
	return tl.server.URL + "/.well-known/jwks.json"
}

// Validator returns a chain that accepts both this fixture's offline tokens
// and its registry keys.
func (tl *TestLicensing) Validator() license.Validator {
	return license.Chain{
		license.NewOfflineValidator(map[string]*rsa.PublicKey{tl.Issuer.KID(): tl.Issuer.PublicKey()}),
		license.NewRegistryValidator(tl.Registry),
	}
}

// IssueKey inserts an active license for scope and returns the plaintext key.
func (tl *TestLicensing) IssueKey(scope string) string {
	return tl.IssueKeyExpiring(scope, nil)
}

// IssueKeyExpiring inserts a license with an optional expiry.
func (tl *TestLicensing) IssueKeyExpiring(scope string, expiresAt *time.Time) string {
	gen, err := license.GenerateKey()
	if err != nil {
		panic("failed to generate key: " + err.Error())
	}
	lic := license.License{
		ID:        uuid.New(),
		KeyPrefix: gen.KeyPrefix,
		KeyHash:   gen.KeyHash,
		Status:    license.StatusActive,
		Scope:     scope,
		IssuedAt:  time.Now(),
		ExpiresAt: expiresAt,
	}
	if err := tl.Registry.Insert(context.Background(), lic); err != nil {
		panic("failed to insert license: " + err.Error())
	}
	return gen.Key
}

// IssueToken signs an offline license token for scope, valid for an hour.
func (tl *TestLicensing) IssueToken(scope string) string {
	token, err := tl.Issuer.Issue("test-customer", scope, time.Hour)
	if err != nil {
		panic("failed to issue offline token: " + err.Error())
	}
	return token
}

// SampleRecipes returns a small valid recipe set spanning both tiers.
func SampleRecipes() []recipe.Recipe {
	return []recipe.Recipe{
		{
			ID:          "settings-screen",
			Title:       "Settings Screen",
			Description: "A settings screen with grouped sections.",
			Tier:        recipe.TierFree,
			Platform:    "ios",
			Complexity:  "beginner",
			Body:        recipe.Body{Implementation: "struct SettingsView: View { ... }"},
		},
		{
			ID:          "stripe-checkout",
			Title:       "Stripe Checkout",
			Description: "In-app checkout backed by Stripe payment sheets.",
			Tier:        recipe.TierPro,
			Platform:    "ios",
			Complexity:  "intermediate",
			Requires:    []string{"settings-screen"},
			Body:        recipe.Body{Implementation: "final class CheckoutModel { ... }"},
		},
	}
}

// SeededStore returns a recipe store preloaded with SampleRecipes.
func SeededStore() *memorystore.RecipeStore {
	store := memorystore.NewRecipeStore()
	if err := store.Replace(context.Background(), SampleRecipes()); err != nil {
		panic("failed to seed recipes: " + err.Error())
	}
	return store
}
