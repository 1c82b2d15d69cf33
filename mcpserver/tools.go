package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/open-rails/recipemcp/recipe"
	"github.com/open-rails/recipemcp/service"
)

// RecipeSummaryEntry is one listing or search result row.
type RecipeSummaryEntry struct {
	ID          string `json:"id" jsonschema:"recipe identifier slug"`
	Title       string `json:"title" jsonschema:"recipe title"`
	Description string `json:"description,omitempty" jsonschema:"short description"`
	Tier        string `json:"tier" jsonschema:"access tier (free or pro)"`
	Platform    string `json:"platform,omitempty" jsonschema:"target platform"`
	Complexity  string `json:"complexity,omitempty" jsonschema:"complexity tag"`
}

// ListRecipesInput is the (empty) input for list_recipes.
type ListRecipesInput struct{}

// ListRecipesResult is the output of list_recipes.
type ListRecipesResult struct {
	Recipes []RecipeSummaryEntry `json:"recipes" jsonschema:"available recipes, body content never included"`
}

// GetRecipeInput is the input for get_recipe.
type GetRecipeInput struct {
	ID         string `json:"id" jsonschema:"recipe identifier slug"`
	LicenseKey string `json:"license_key,omitempty" jsonschema:"optional license key unlocking pro recipes"`
}

// GetRecipeResult is the tagged output of get_recipe. Kind is one of full,
// redacted, or not_found; redaction is a successful response the assistant
// should relay, not an error.
type GetRecipeResult struct {
	Kind     string                  `json:"kind" jsonschema:"result shape: full, redacted, or not_found"`
	Recipe   *recipe.Recipe          `json:"recipe,omitempty" jsonschema:"full recipe when kind is full"`
	Redacted *service.RedactedRecipe `json:"redacted,omitempty" jsonschema:"pro placeholder when kind is redacted"`
	Missing  *service.MissingRecipe  `json:"missing,omitempty" jsonschema:"unknown id when kind is not_found"`
}

// SearchRecipesInput is the input for search_recipes. Results are summaries,
// so the license key only affects follow-up get_recipe calls; it is accepted
// here so assistants can pass it uniformly.
type SearchRecipesInput struct {
	Query      string `json:"query" jsonschema:"search terms matched against id, title, description, and tags"`
	LicenseKey string `json:"license_key,omitempty" jsonschema:"optional license key, not required for search"`
}

// SearchRecipesResult is the output of search_recipes.
type SearchRecipesResult struct {
	Recipes []RecipeSummaryEntry `json:"recipes" jsonschema:"matching recipes in relevance order"`
}

func registerRecipeTools(mcpServer *mcp.Server, svc *service.Service) {
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "list_recipes",
		Description: "Lists every available SwiftUI recipe with id, title, and tier. Body content is never included.",
	}, listRecipesHandler(svc))
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "get_recipe",
		Description: "Fetches one recipe by id. Pro recipes return a redacted placeholder unless a valid license key is provided.",
	}, getRecipeHandler(svc))
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "search_recipes",
		Description: "Searches recipes by keyword and returns matching summaries in relevance order.",
	}, searchRecipesHandler(svc))
}

func listRecipesHandler(svc *service.Service) mcp.ToolHandlerFor[ListRecipesInput, ListRecipesResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ ListRecipesInput) (*mcp.CallToolResult, ListRecipesResult, error) {
		summaries, err := svc.List(ctx)
		if err != nil {
			return nil, ListRecipesResult{}, fmt.Errorf("list recipes failed: %w", err)
		}
		return nil, ListRecipesResult{Recipes: summaryEntries(summaries)}, nil
	}
}

func getRecipeHandler(svc *service.Service) mcp.ToolHandlerFor[GetRecipeInput, GetRecipeResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GetRecipeInput) (*mcp.CallToolResult, GetRecipeResult, error) {
		res, err := svc.Get(ctx, input.ID, input.LicenseKey)
		if err != nil {
			if service.IsInvalidRequest(err) {
				return nil, GetRecipeResult{}, err
			}
			return nil, GetRecipeResult{}, fmt.Errorf("get recipe failed: %w", err)
		}
		return nil, GetRecipeResult{
			Kind:     string(res.Kind),
			Recipe:   res.Recipe,
			Redacted: res.Redacted,
			Missing:  res.Missing,
		}, nil
	}
}

func searchRecipesHandler(svc *service.Service) mcp.ToolHandlerFor[SearchRecipesInput, SearchRecipesResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SearchRecipesInput) (*mcp.CallToolResult, SearchRecipesResult, error) {
		summaries, err := svc.Search(ctx, input.Query)
		if err != nil {
			return nil, SearchRecipesResult{}, fmt.Errorf("search recipes failed: %w", err)
		}
		return nil, SearchRecipesResult{Recipes: summaryEntries(summaries)}, nil
	}
}

// recipeListResource mirrors list_recipes as a readable resource for clients
// that prefer resource reads over tool calls.
func recipeListResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "recipe_list",
		Title:       "Recipes",
		Description: "Readable listing of available recipe summaries",
		MIMEType:    "application/json",
		URI:         "recipes://list",
	}
}

func registerRecipeResources(mcpServer *mcp.Server, svc *service.Service) {
	mcpServer.AddResource(recipeListResource(), recipeListResourceHandler(svc))
}

func recipeListResourceHandler(svc *service.Service) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		uri := recipeListResource().URI
		if req != nil && req.Params != nil && req.Params.URI != "" {
			uri = req.Params.URI
		}
		summaries, err := svc.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("recipe list failed: %w", err)
		}
		payload := ListRecipesResult{Recipes: summaryEntries(summaries)}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal recipe list: %w", err)
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      uri,
					MIMEType: "application/json",
					Text:     string(data),
				},
			},
		}, nil
	}
}

func summaryEntries(summaries []recipe.Summary) []RecipeSummaryEntry {
	out := make([]RecipeSummaryEntry, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, RecipeSummaryEntry{
			ID:          s.ID,
			Title:       s.Title,
			Description: s.Description,
			Tier:        string(s.Tier),
			Platform:    s.Platform,
			Complexity:  s.Complexity,
		})
	}
	return out
}
