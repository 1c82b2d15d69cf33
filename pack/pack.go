// Package pack loads versioned recipe content packs into a store. A pack is
// the publishing artifact: the server only ever reads it.
package pack

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/open-rails/recipemcp/recipe"
)

// Pack is one published recipe collection. Version is the pack's semantic
// version; its major component is what a license scope entitles (a "v1" scope
// covers every 1.x pack).
type Pack struct {
	Name    string          `json:"name"`
	Version string          `json:"pack_version"`
	Recipes []recipe.Recipe `json:"recipes"`
}

// Scope returns the license scope this pack belongs to, e.g. "v1".
func (p Pack) Scope() string {
	major := strings.SplitN(strings.TrimPrefix(p.Version, "v"), ".", 2)[0]
	return "v" + major
}

// Decode parses and validates a pack document. Recipe ids must be unique and
// every requires/pairs_with reference must resolve inside the pack, so a
// published pack can never dangle.
func Decode(r io.Reader) (Pack, error) {
	var p Pack
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return Pack{}, fmt.Errorf("decode pack: %w", err)
	}
	if err := p.validate(); err != nil {
		return Pack{}, err
	}
	return p, nil
}

// Load reads and validates the pack at path.
func Load(path string) (Pack, error) {
	f, err := os.Open(path)
	if err != nil {
		return Pack{}, fmt.Errorf("open pack: %w", err)
	}
	defer f.Close()
	p, err := Decode(f)
	if err != nil {
		return Pack{}, fmt.Errorf("pack %s: %w", path, err)
	}
	return p, nil
}

func (p Pack) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("pack name is required")
	}
	if err := validateVersion(p.Version); err != nil {
		return err
	}
	ids := make(map[string]bool, len(p.Recipes))
	for _, r := range p.Recipes {
		if err := r.Validate(); err != nil {
			return err
		}
		if ids[r.ID] {
			return fmt.Errorf("duplicate recipe id %q", r.ID)
		}
		ids[r.ID] = true
	}
	for _, r := range p.Recipes {
		for _, ref := range r.Requires {
			if !ids[ref] {
				return fmt.Errorf("recipe %s requires unknown recipe %q", r.ID, ref)
			}
		}
		for _, ref := range r.PairsWith {
			if !ids[ref] {
				return fmt.Errorf("recipe %s pairs with unknown recipe %q", r.ID, ref)
			}
		}
	}
	return nil
}

func validateVersion(version string) error {
	v := strings.TrimPrefix(version, "v")
	if v == "" || v == version {
		return fmt.Errorf("pack_version %q must look like v1.2.3", version)
	}
	for _, part := range strings.Split(v, ".") {
		if _, err := strconv.Atoi(part); err != nil {
			return fmt.Errorf("pack_version %q must look like v1.2.3", version)
		}
	}
	return nil
}

// Replacer is the write half of a recipe store.
type Replacer interface {
	Replace(ctx context.Context, recipes []recipe.Recipe) error
}

// Apply loads the pack at path into store.
func Apply(ctx context.Context, store Replacer, path string) (Pack, error) {
	p, err := Load(path)
	if err != nil {
		return Pack{}, err
	}
	if err := store.Replace(ctx, p.Recipes); err != nil {
		return Pack{}, fmt.Errorf("apply pack %s: %w", p.Name, err)
	}
	return p, nil
}
