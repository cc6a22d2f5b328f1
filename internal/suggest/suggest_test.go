package suggest

import (
	"testing"

	"cookmate/internal/learning"
	"cookmate/internal/pantry"
	"cookmate/internal/recipe"
)

func activeItem(name string) pantry.Item {
	return pantry.Item{ID: name, Name: name, Quantity: 1, Source: pantry.SourceManual}
}

func noLearning() learning.State {
	return learning.State{TagWeights: map[string]float64{}}
}

func TestVeganExcludesChickenBroth(t *testing.T) {
	soup := recipe.Recipe{
		ID:      "soup",
		Title:   "Chicken Noodle Soup",
		TimeMin: 45,
		Needs:   []string{"chicken broth", "noodles", "carrot"},
	}
	prefs := Preferences{Diet: DietVegan}
	items := []pantry.Item{activeItem("chicken broth"), activeItem("noodles"), activeItem("carrot")}
	state := learning.State{TagWeights: map[string]float64{"soup": 12}}

	eval := Evaluate(soup, prefs, items, state)
	if eval.Eligible {
		t.Fatal("Vegan preference must exclude chicken broth regardless of pantry or learning")
	}

	if got := GetSuggestions([]recipe.Recipe{soup}, prefs, items, 5, state); len(got) != 0 {
		t.Fatalf("Excluded recipe must never be suggested, got %v", got)
	}
}

func TestAllergenExactMatchExcludes(t *testing.T) {
	toast := recipe.Recipe{
		ID:        "toast",
		Title:     "Egg Toast",
		TimeMin:   10,
		Allergens: []string{"egg", "gluten"},
		Needs:     []string{"egg", "bread"},
	}
	items := []pantry.Item{activeItem("egg"), activeItem("bread")}

	eval := Evaluate(toast, Preferences{Allergies: []string{"Egg"}}, items, noLearning())
	if eval.Eligible {
		t.Error("Case-insensitive allergen match must exclude the recipe")
	}

	ok := Evaluate(toast, Preferences{Allergies: []string{"peanut"}}, items, noLearning())
	if !ok.Eligible {
		t.Error("Unrelated allergy must not exclude the recipe")
	}
}

func TestDislikedIngredientExcludes(t *testing.T) {
	curry := recipe.Recipe{
		ID:      "curry",
		Title:   "Chickpea Coconut Curry",
		TimeMin: 30,
		Needs:   []string{"chickpeas", "coconut milk"},
	}
	items := []pantry.Item{activeItem("chickpeas"), activeItem("coconut milk")}

	eval := Evaluate(curry, Preferences{Disliked: []string{"coconut"}}, items, noLearning())
	if eval.Eligible {
		t.Error("Disliked substring must exclude the recipe")
	}
}

func TestHalfMatchBoundaryIsInclusive(t *testing.T) {
	toast := recipe.Recipe{
		ID:      "toast",
		Title:   "Egg Toast",
		TimeMin: 10,
		Needs:   []string{"egg", "bread"},
	}
	// Exactly 1 of 2 required ingredients: the 50% boundary qualifies.
	items := []pantry.Item{{ID: "egg", Name: "egg", Quantity: 6, Source: pantry.SourceManual}}

	eval := Evaluate(toast, Preferences{Diet: DietRegular}, items, noLearning())
	if !eval.Eligible {
		t.Fatal("A recipe at exactly 50% pantry match must be eligible")
	}
	// 1 match * 2 points + quick bonus.
	if eval.Score != 3 {
		t.Errorf("Expected score 3, got %v", eval.Score)
	}

	got := GetSuggestions([]recipe.Recipe{toast}, Preferences{Diet: DietRegular}, items, 5, noLearning())
	if len(got) != 1 || got[0].ID != "toast" {
		t.Errorf("Expected the boundary recipe suggested, got %v", got)
	}
}

func TestBelowHalfMatchIsIneligible(t *testing.T) {
	stir := recipe.Recipe{
		ID:      "stir",
		Title:   "Beef Stir Fry",
		TimeMin: 20,
		Needs:   []string{"beef", "soy sauce", "broccoli", "rice"},
	}
	items := []pantry.Item{activeItem("rice")}

	eval := Evaluate(stir, Preferences{}, items, noLearning())
	if eval.Eligible {
		t.Errorf("1 of 4 matches (25%%) must be ineligible, got score %v", eval.Score)
	}
}

func TestUsedPantryItemsDoNotCount(t *testing.T) {
	toast := recipe.Recipe{ID: "toast", Title: "Egg Toast", TimeMin: 10, Needs: []string{"egg", "bread"}}
	items := []pantry.Item{
		{ID: "egg", Name: "egg", Used: true, Source: pantry.SourceManual},
	}

	if got := GetSuggestions([]recipe.Recipe{toast}, Preferences{}, items, 5, noLearning()); len(got) != 0 {
		t.Errorf("Used items must not contribute matches, got %v", got)
	}
}

func TestLearningBoostIsPositiveOnly(t *testing.T) {
	pasta := recipe.Recipe{
		ID:      "pasta",
		Title:   "Tomato Basil Pasta",
		TimeMin: 20,
		Tags:    []string{"pasta", "quick"},
		Needs:   []string{"pasta", "tomato"},
	}
	items := []pantry.Item{activeItem("pasta"), activeItem("tomato")}

	base := Evaluate(pasta, Preferences{}, items, noLearning())
	if base.Score != 5 { // 2 matches * 2 + quick bonus
		t.Fatalf("Expected base score 5, got %v", base.Score)
	}

	boosted := Evaluate(pasta, Preferences{}, items, learning.State{TagWeights: map[string]float64{"pasta": 4}})
	if boosted.Score != 9 {
		t.Errorf("Expected positive boost applied, got %v", boosted.Score)
	}

	// Negative affinity never subtracts at rank time; dislike is the hard
	// filters' job.
	penalized := Evaluate(pasta, Preferences{}, items, learning.State{TagWeights: map[string]float64{"pasta": -6}})
	if penalized.Score != 5 {
		t.Errorf("Negative weights must not reduce the score, got %v", penalized.Score)
	}
}

func TestOrderingAndTieBreak(t *testing.T) {
	quick := recipe.Recipe{ID: "a", Title: "Quick Dish", TimeMin: 15, Needs: []string{"rice"}}
	slow := recipe.Recipe{ID: "b", Title: "Slow Dish", TimeMin: 40, Needs: []string{"rice"}}
	items := []pantry.Item{activeItem("rice")}

	got := GetSuggestions([]recipe.Recipe{slow, quick}, Preferences{}, items, 5, noLearning())
	if len(got) != 2 {
		t.Fatalf("Expected both recipes, got %d", len(got))
	}
	// quick scores 2+1=3, slow scores 2: score descending.
	if got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("Expected quick dish first, got %v then %v", got[0].ID, got[1].ID)
	}

	// Equal scores tie-break on ascending prep time.
	mid := recipe.Recipe{ID: "c", Title: "Mid Dish", TimeMin: 25, Needs: []string{"rice"}}
	got = GetSuggestions([]recipe.Recipe{mid, quick}, Preferences{}, items, 5, noLearning())
	if got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("Expected tie broken by TimeMin, got %v then %v", got[0].ID, got[1].ID)
	}
}

func TestSparsePantryYieldsEmptyList(t *testing.T) {
	catalog, err := recipe.LoadCatalog()
	if err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}

	items := []pantry.Item{activeItem("saffron")}
	if got := GetSuggestions(catalog, Preferences{}, items, 5, noLearning()); len(got) != 0 {
		t.Errorf("Expected empty list for an unmatched sparse pantry, got %d recipes", len(got))
	}
}

func TestCountLimitsOutput(t *testing.T) {
	catalog, err := recipe.LoadCatalog()
	if err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}

	items := []pantry.Item{
		activeItem("pasta"), activeItem("tomato"), activeItem("garlic"),
		activeItem("egg"), activeItem("bread"), activeItem("lentils"),
		activeItem("carrot"),
	}
	got := GetSuggestions(catalog, Preferences{}, items, 2, noLearning())
	if len(got) > 2 {
		t.Errorf("Expected at most 2 suggestions, got %d", len(got))
	}
}
