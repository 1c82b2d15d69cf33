package service

import (
	"errors"

	"github.com/open-rails/recipemcp/license"
	"github.com/open-rails/recipemcp/recipe"
)

// ErrInvalidRequest reports malformed caller input (bad ids, unknown
// operations). It is the only client-fault error the service produces.
var ErrInvalidRequest = errors.New("invalid request")

// IsInvalidRequest reports whether err wraps ErrInvalidRequest.
func IsInvalidRequest(err error) bool { return errors.Is(err, ErrInvalidRequest) }

// ResultKind tags the shape of a Get outcome.
type ResultKind string

const (
	// KindFull carries the complete recipe including body.
	KindFull ResultKind = "full"
	// KindRedacted carries metadata plus an upgrade call-to-action, never
	// body content. It is a success, not an authorization error.
	KindRedacted ResultKind = "redacted"
	// KindNotFound reports a well-formed negative lookup.
	KindNotFound ResultKind = "not_found"
)

// Result is the tagged outcome of a Get: full, redacted, or not found.
// Exactly one of the payload fields is set, per Kind.
type Result struct {
	Kind     ResultKind      `json:"kind"`
	Recipe   *recipe.Recipe  `json:"recipe,omitempty"`
	Redacted *RedactedRecipe `json:"redacted,omitempty"`
	Missing  *MissingRecipe  `json:"missing,omitempty"`
}

// RedactedRecipe is the placeholder returned for pro content without
// entitlement. Metadata stays visible; only the body is withheld.
type RedactedRecipe struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Description    string         `json:"description,omitempty"`
	Tier           recipe.Tier    `json:"tier"`
	Requires       []string       `json:"requires,omitempty"`
	PairsWith      []string       `json:"pairs_with,omitempty"`
	Reason         license.Reason `json:"reason"`
	UpgradeMessage string         `json:"upgrade_message"`
}

// MissingRecipe reports the id that did not resolve.
type MissingRecipe struct {
	ID string `json:"id"`
}

// Full wraps a complete recipe.
func Full(r recipe.Recipe) Result {
	return Result{Kind: KindFull, Recipe: &r}
}

// Redacted builds the placeholder for r with the denial reason.
func Redacted(r recipe.Recipe, reason license.Reason) Result {
	return Result{Kind: KindRedacted, Redacted: &RedactedRecipe{
		ID:             r.ID,
		Title:          r.Title,
		Description:    r.Description,
		Tier:           r.Tier,
		Requires:       r.Requires,
		PairsWith:      r.PairsWith,
		Reason:         reason,
		UpgradeMessage: UpgradeMessage,
	}}
}

// NotFound reports an unknown id.
func NotFound(id string) Result {
	return Result{Kind: KindNotFound, Missing: &MissingRecipe{ID: id}}
}
