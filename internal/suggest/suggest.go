// Package suggest ranks the recipe catalog for the user. Filtering and
// scoring are two separate stages: a recipe is first judged eligible
// against diet, allergy and dislike constraints, then scored by pantry
// overlap and learned tag affinity.
package suggest

import (
	"slices"
	"strings"

	"cookmate/internal/learning"
	"cookmate/internal/pantry"
	"cookmate/internal/recipe"
)

const (
	// pantryMatchPoints is awarded per required ingredient found in the
	// active pantry.
	pantryMatchPoints = 2.0

	// quickBonus is awarded to recipes at or under quickTimeMin minutes.
	quickBonus   = 1.0
	quickTimeMin = 25

	// minMatchRatio is the share of required ingredients that must be in
	// the pantry. The boundary is inclusive: exactly half qualifies.
	minMatchRatio = 0.5
)

// Evaluation is the outcome of judging one recipe: eligibility and score
// are explicit, separate facts.
type Evaluation struct {
	Recipe     recipe.Recipe
	Eligible   bool
	Score      float64
	MatchRatio float64
}

// Evaluate runs the filter and scoring pipeline for a single recipe.
func Evaluate(rec recipe.Recipe, prefs Preferences, activeItems []pantry.Item, state learning.State) Evaluation {
	eval := Evaluation{Recipe: rec}

	// Stage 1: hard filters. A failing recipe is ineligible outright,
	// not merely penalized.
	for _, need := range rec.Needs {
		if restrictedByDiet(prefs.Diet, need) {
			return eval
		}
		for _, disliked := range prefs.Disliked {
			if disliked != "" && strings.Contains(strings.ToLower(need), strings.ToLower(disliked)) {
				return eval
			}
		}
	}
	for _, allergen := range rec.Allergens {
		for _, allergy := range prefs.Allergies {
			if strings.EqualFold(allergen, allergy) {
				return eval
			}
		}
	}

	// Stage 2: pantry overlap.
	if len(rec.Needs) == 0 {
		return eval
	}
	matched := 0
	for _, need := range rec.Needs {
		for _, item := range activeItems {
			if recipe.NamesOverlap(item.Name, need) {
				matched++
				break
			}
		}
	}
	eval.MatchRatio = float64(matched) / float64(len(rec.Needs))
	if eval.MatchRatio < minMatchRatio {
		return eval
	}

	score := pantryMatchPoints * float64(matched)
	if rec.TimeMin <= quickTimeMin {
		score += quickBonus
	}

	// Learning boost only ever adds positive affinity. Dislike is
	// expressed through the hard filters, never by subtracting here.
	for _, tag := range rec.Tags {
		if boost := learning.TagBoost(tag, state); boost > 0 {
			score += boost
		}
	}

	eval.Eligible = true
	eval.Score = score
	return eval
}

// GetSuggestions evaluates the catalog and returns up to count recipes,
// best first. Only non-used pantry items count toward overlap, and
// recipes scoring zero never appear, so a sparse pantry yields an empty
// list rather than arbitrary fallbacks.
func GetSuggestions(catalog []recipe.Recipe, prefs Preferences, items []pantry.Item, count int, state learning.State) []recipe.Recipe {
	var active []pantry.Item
	for _, item := range items {
		if !item.Used {
			active = append(active, item)
		}
	}

	var eligible []Evaluation
	for _, rec := range catalog {
		eval := Evaluate(rec, prefs, active, state)
		if eval.Eligible && eval.Score > 0 {
			eligible = append(eligible, eval)
		}
	}

	slices.SortFunc(eligible, func(a, b Evaluation) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		case a.Recipe.TimeMin < b.Recipe.TimeMin:
			return -1
		case a.Recipe.TimeMin > b.Recipe.TimeMin:
			return 1
		default:
			return strings.Compare(a.Recipe.Title, b.Recipe.Title)
		}
	})

	if count >= 0 && len(eligible) > count {
		eligible = eligible[:count]
	}
	recipes := make([]recipe.Recipe, len(eligible))
	for i, eval := range eligible {
		recipes[i] = eval.Recipe
	}
	return recipes
}
