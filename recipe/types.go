package recipe

import (
	"fmt"
	"regexp"
	"strings"
)

// Tier is the access class of a recipe.
type Tier string

const (
	TierFree Tier = "free"
	TierPro  Tier = "pro"
)

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool { return t == TierFree || t == TierPro }

// Body holds the structured content sections of a recipe.
type Body struct {
	Problem       string   `json:"problem,omitempty"`
	Architecture  string   `json:"architecture,omitempty"`
	Dependencies  []string `json:"dependencies,omitempty"`
	Implementation string  `json:"implementation"`
	Integration   string   `json:"integration,omitempty"`
	Customization string   `json:"customization,omitempty"`
	Pitfalls      string   `json:"pitfalls,omitempty"`
}

// Empty reports whether the body carries no content at all.
func (b Body) Empty() bool {
	return b.Problem == "" && b.Architecture == "" && len(b.Dependencies) == 0 &&
		b.Implementation == "" && b.Integration == "" && b.Customization == "" && b.Pitfalls == ""
}

// Recipe is a single versioned documentation unit tagged with an access tier.
// Tier is immutable once published; a version bump creates a new recipe.
type Recipe struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tier        Tier     `json:"tier"`
	Platform    string   `json:"platform,omitempty"`
	Complexity  string   `json:"complexity,omitempty"`
	Requires    []string `json:"requires,omitempty"`
	PairsWith   []string `json:"pairs_with,omitempty"`
	Body        Body     `json:"body"`
}

// Summary is the listing view of a recipe. It never carries body content,
// so listings and search results require no redaction.
type Summary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Tier        Tier   `json:"tier"`
	Platform    string `json:"platform,omitempty"`
	Complexity  string `json:"complexity,omitempty"`
}

// Summary returns the listing view of r.
func (r Recipe) Summary() Summary {
	return Summary{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Tier:        r.Tier,
		Platform:    r.Platform,
		Complexity:  r.Complexity,
	}
}

var reSlug = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ValidateID checks that id is a well-formed recipe slug (e.g. "auth-cognito").
func ValidateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("recipe id is required")
	}
	if !reSlug.MatchString(id) {
		return fmt.Errorf("recipe id %q is not a valid slug", id)
	}
	return nil
}

// Validate checks the structural invariants of a recipe before it enters a store.
func (r Recipe) Validate() error {
	if err := ValidateID(r.ID); err != nil {
		return err
	}
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("recipe %s: title is required", r.ID)
	}
	if !r.Tier.Valid() {
		return fmt.Errorf("recipe %s: unknown tier %q", r.ID, r.Tier)
	}
	for _, ref := range r.Requires {
		if err := ValidateID(ref); err != nil {
			return fmt.Errorf("recipe %s: requires: %w", r.ID, err)
		}
	}
	for _, ref := range r.PairsWith {
		if err := ValidateID(ref); err != nil {
			return fmt.Errorf("recipe %s: pairs_with: %w", r.ID, err)
		}
	}
	return nil
}
