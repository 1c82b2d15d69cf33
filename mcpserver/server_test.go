// Package mcpserver tests the MCP tool handlers against an in-memory service.
package mcpserver

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/open-rails/recipemcp/license"
	"github.com/open-rails/recipemcp/recipe"
	"github.com/open-rails/recipemcp/service"
	memorystore "github.com/open-rails/recipemcp/storage/memory"
)

// allowlistValidator allows exactly one key.
type allowlistValidator struct {
	key string
}

func (v allowlistValidator) Validate(_ context.Context, credential string) (license.Decision, error) {
	switch credential {
	case "":
		return license.Deny(license.ReasonNoKey), nil
	case v.key:
		return license.Allow("v1"), nil
	default:
		return license.Deny(license.ReasonKeyInvalid), nil
	}
}

func newTestService(t *testing.T) *service.Service {
	t.Helper()
	store := memorystore.NewRecipeStore()
	err := store.Replace(context.Background(), []recipe.Recipe{
		{
			ID:          "onboarding-flow",
			Title:       "Onboarding Flow",
			Description: "Multi-step onboarding with paging",
			Tier:        recipe.TierFree,
			Body:        recipe.Body{Implementation: "struct OnboardingView: View { ... }"},
		},
		{
			ID:          "auth-cognito",
			Title:       "Cognito Authentication",
			Description: "Sign-in flow backed by AWS Cognito",
			Tier:        recipe.TierPro,
			Body:        recipe.Body{Implementation: "final class CognitoSession { ... }"},
		},
	})
	if err != nil {
		t.Fatalf("seed store: %v", err)
	}
	log := logrus.New()
	log.SetOutput(io.Discard)
	return service.New(store, allowlistValidator{key: "sk-valid-valid"}, log)
}

func TestListRecipesHandler(t *testing.T) {
	handler := listRecipesHandler(newTestService(t))
	_, result, err := handler(context.Background(), nil, ListRecipesInput{})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if len(result.Recipes) != 2 {
		t.Fatalf("got %d recipes, want 2", len(result.Recipes))
	}
	if result.Recipes[0].ID != "auth-cognito" || result.Recipes[0].Tier != "pro" {
		t.Errorf("first entry = %+v", result.Recipes[0])
	}
}

func TestGetRecipeHandlerFreeTier(t *testing.T) {
	handler := getRecipeHandler(newTestService(t))
	_, result, err := handler(context.Background(), nil, GetRecipeInput{ID: "onboarding-flow"})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if result.Kind != "full" || result.Recipe == nil {
		t.Fatalf("result = %+v, want full", result)
	}
	if result.Recipe.Body.Implementation == "" {
		t.Error("free recipe body missing")
	}
}

func TestGetRecipeHandlerRedactsPro(t *testing.T) {
	handler := getRecipeHandler(newTestService(t))
	_, result, err := handler(context.Background(), nil, GetRecipeInput{ID: "auth-cognito"})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if result.Kind != "redacted" || result.Redacted == nil {
		t.Fatalf("result = %+v, want redacted", result)
	}
	if result.Recipe != nil {
		t.Error("redacted response leaked recipe body")
	}
	if result.Redacted.ID != "auth-cognito" || result.Redacted.UpgradeMessage == "" {
		t.Errorf("redacted payload = %+v", result.Redacted)
	}
}

func TestGetRecipeHandlerLicenseKeyArgument(t *testing.T) {
	handler := getRecipeHandler(newTestService(t))
	_, result, err := handler(context.Background(), nil, GetRecipeInput{ID: "auth-cognito", LicenseKey: "sk-valid-valid"})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if result.Kind != "full" || result.Recipe == nil {
		t.Fatalf("result = %+v, want full", result)
	}
}

func TestGetRecipeHandlerCredentialFromContext(t *testing.T) {
	handler := getRecipeHandler(newTestService(t))
	ctx := license.WithCredential(context.Background(), "sk-valid-valid")
	_, result, err := handler(ctx, nil, GetRecipeInput{ID: "auth-cognito"})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if result.Kind != "full" {
		t.Errorf("Kind = %s, want full via transport credential", result.Kind)
	}
}

func TestGetRecipeHandlerNotFound(t *testing.T) {
	handler := getRecipeHandler(newTestService(t))
	_, result, err := handler(context.Background(), nil, GetRecipeInput{ID: "does-not-exist"})
	if err != nil {
		t.Fatalf("not-found must be a payload, not an error: %v", err)
	}
	if result.Kind != "not_found" || result.Missing == nil || result.Missing.ID != "does-not-exist" {
		t.Errorf("result = %+v, want not_found", result)
	}
}

func TestGetRecipeHandlerInvalidID(t *testing.T) {
	handler := getRecipeHandler(newTestService(t))
	_, _, err := handler(context.Background(), nil, GetRecipeInput{ID: "Not A Slug"})
	if err == nil {
		t.Fatal("malformed id should surface as a protocol error")
	}
}

func TestSearchRecipesHandler(t *testing.T) {
	handler := searchRecipesHandler(newTestService(t))
	_, result, err := handler(context.Background(), nil, SearchRecipesInput{Query: "cognito"})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if len(result.Recipes) != 1 || result.Recipes[0].ID != "auth-cognito" {
		t.Errorf("result = %+v", result.Recipes)
	}
}

func TestRecipeListResourceHandler(t *testing.T) {
	handler := recipeListResourceHandler(newTestService(t))
	res, err := handler(context.Background(), nil)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if len(res.Contents) != 1 || res.Contents[0].URI != "recipes://list" {
		t.Fatalf("contents = %+v", res.Contents)
	}
	text := res.Contents[0].Text
	if !strings.Contains(text, "auth-cognito") || !strings.Contains(text, "onboarding-flow") {
		t.Errorf("resource text missing recipes: %s", text)
	}
	if strings.Contains(text, "CognitoSession") {
		t.Error("resource listing leaked body content")
	}
}

func TestBearerCredential(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer sk-abc-def", "sk-abc-def"},
		{"bearer sk-abc-def", "sk-abc-def"},
		{"Bearer   sk-abc-def  ", "sk-abc-def"},
		{"Basic dXNlcjpwYXNz", ""},
		{"Bearer", ""},
	}
	for _, tt := range tests {
		if got := bearerCredential(tt.header); got != tt.want {
			t.Errorf("bearerCredential(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
