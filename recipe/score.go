package recipe

import (
	"sort"
	"strings"
)

// Search scoring rule, shared by every store backend so results are identical
// regardless of where content lives.
//
// The query is lowercased and split on whitespace. Each token contributes:
//
//	4  if it is a substring of the recipe id
//	3  if it is a substring of the title
//	2  if it is a substring of the description
//	1  if it is a substring of platform, complexity, or a requires/pairs_with id
//
// A recipe matches when its total score is positive and every token scored at
// least once. Results are ordered by score descending, then id ascending.
// No fuzzy matching: substring containment only.

const (
	scoreID    = 4
	scoreTitle = 3
	scoreDesc  = 2
	scoreTag   = 1
)

// Score returns the relevance of r for query, or 0 when r does not match.
func Score(r Recipe, query string) int {
	tokens := strings.Fields(strings.ToLower(query))
	if len(tokens) == 0 {
		return 0
	}
	id := strings.ToLower(r.ID)
	title := strings.ToLower(r.Title)
	desc := strings.ToLower(r.Description)
	tags := make([]string, 0, 2+len(r.Requires)+len(r.PairsWith))
	if r.Platform != "" {
		tags = append(tags, strings.ToLower(r.Platform))
	}
	if r.Complexity != "" {
		tags = append(tags, strings.ToLower(r.Complexity))
	}
	for _, ref := range r.Requires {
		tags = append(tags, strings.ToLower(ref))
	}
	for _, ref := range r.PairsWith {
		tags = append(tags, strings.ToLower(ref))
	}

	total := 0
	for _, tok := range tokens {
		score := 0
		if strings.Contains(id, tok) {
			score += scoreID
		}
		if strings.Contains(title, tok) {
			score += scoreTitle
		}
		if strings.Contains(desc, tok) {
			score += scoreDesc
		}
		for _, tag := range tags {
			if strings.Contains(tag, tok) {
				score += scoreTag
				break
			}
		}
		if score == 0 {
			// Every token must match somewhere.
			return 0
		}
		total += score
	}
	return total
}

// Rank scores recipes against query and returns matching summaries in
// deterministic order: score descending, id ascending on ties.
func Rank(recipes []Recipe, query string) []Summary {
	type scored struct {
		summary Summary
		score   int
	}
	matches := make([]scored, 0, len(recipes))
	for _, r := range recipes {
		if s := Score(r, query); s > 0 {
			matches = append(matches, scored{summary: r.Summary(), score: s})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].summary.ID < matches[j].summary.ID
	})
	out := make([]Summary, len(matches))
	for i, m := range matches {
		out[i] = m.summary
	}
	return out
}
