// Package memorystore provides in-memory recipe and license backends for
// tests and embedded content packs.
package memorystore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/open-rails/recipemcp/recipe"
)

// RecipeStore is an in-memory implementation of recipe.Store. Content is
// replaced wholesale by the pack loader; reads take a snapshot, so concurrent
// readers never observe a half-applied pack.
type RecipeStore struct {
	mu      sync.RWMutex
	byID    map[string]recipe.Recipe
	ordered []string
}

// NewRecipeStore creates an empty in-memory store.
func NewRecipeStore() *RecipeStore {
	return &RecipeStore{byID: make(map[string]recipe.Recipe)}
}

// Replace atomically swaps the store content. Ids must be unique and every
// recipe must validate; on error the previous content stays in place.
func (s *RecipeStore) Replace(_ context.Context, recipes []recipe.Recipe) error {
	byID := make(map[string]recipe.Recipe, len(recipes))
	ordered := make([]string, 0, len(recipes))
	for _, r := range recipes {
		if err := r.Validate(); err != nil {
			return err
		}
		if _, dup := byID[r.ID]; dup {
			return fmt.Errorf("duplicate recipe id %q", r.ID)
		}
		byID[r.ID] = r
		ordered = append(ordered, r.ID)
	}
	sort.Strings(ordered)

	s.mu.Lock()
	s.byID = byID
	s.ordered = ordered
	s.mu.Unlock()
	return nil
}

// List implements recipe.Store.
func (s *RecipeStore) List(_ context.Context) ([]recipe.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]recipe.Summary, 0, len(s.ordered))
	for _, id := range s.ordered {
		out = append(out, s.byID[id].Summary())
	}
	return out, nil
}

// Get implements recipe.Store.
func (s *RecipeStore) Get(_ context.Context, id string) (recipe.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byID[id]
	if !ok {
		return recipe.Recipe{}, fmt.Errorf("recipe %q: %w", id, recipe.ErrNotFound)
	}
	return r, nil
}

// Search implements recipe.Store.
func (s *RecipeStore) Search(_ context.Context, query string) ([]recipe.Summary, error) {
	s.mu.RLock()
	recipes := make([]recipe.Recipe, 0, len(s.ordered))
	for _, id := range s.ordered {
		recipes = append(recipes, s.byID[id])
	}
	s.mu.RUnlock()
	return recipe.Rank(recipes, query), nil
}

// Len returns the number of stored recipes.
func (s *RecipeStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
