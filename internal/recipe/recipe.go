// Package recipe defines the recipe reference data the rest of the app
// reads: the static catalog, the sqlite-backed repository for imported
// recipes, and the LLM extractor that normalizes clipped pages.
package recipe

import (
	"strings"
)

// Recipe is read-only reference data. The core never mutates recipes.
type Recipe struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	TimeMin       int               `json:"time_min"`
	Kcal          int               `json:"kcal,omitempty"`
	Tags          []string          `json:"tags"`
	Allergens     []string          `json:"allergens,omitempty"`
	Needs         []string          `json:"needs"`
	Optional      []string          `json:"optional,omitempty"`
	Ingredients   []string          `json:"ingredients"`
	Steps         []string          `json:"steps"`
	Substitutions map[string]string `json:"substitutions,omitempty"`
	UpdatedAt     string            `json:"source_updated_at,omitempty"`
}

// NamesOverlap reports whether two ingredient names match under the
// app-wide rule: case-insensitive bidirectional substring containment.
// "egg" matches "eggs", and pantry "cream" matches recipe "sour cream".
func NamesOverlap(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
