package chattools

import (
	"fmt"
	"strings"

	"cookmate/internal/shopping"
)

// maxAlternatives bounds how many substitutes a single lookup returns.
const maxAlternatives = 3

// substituteTable maps a missing ingredient to common replacements. Keys
// are matched by substring against the requested name; the longest
// matching key wins so "coconut milk" beats "milk".
var substituteTable = map[string][]string{
	"butter":          {"olive oil", "coconut oil", "margarine"},
	"buttermilk":      {"milk", "yogurt"},
	"coconut milk":    {"cream", "oat milk", "yogurt"},
	"milk":            {"oat milk", "soy milk", "cream"},
	"cream":           {"coconut milk", "yogurt", "milk"},
	"egg":             {"flax meal", "applesauce", "banana"},
	"chicken broth":   {"vegetable broth", "bouillon cube", "water"},
	"vegetable broth": {"chicken broth", "bouillon cube"},
	"soy sauce":       {"tamari", "coconut aminos", "worcestershire sauce"},
	"lime":            {"lemon", "vinegar"},
	"lemon":           {"lime", "vinegar"},
	"onion":           {"shallot", "leek", "onion powder"},
	"garlic":          {"garlic powder", "shallot"},
	"parmesan":        {"pecorino", "nutritional yeast"},
	"feta":            {"goat cheese", "ricotta"},
	"rice":            {"quinoa", "couscous", "cauliflower rice"},
	"pasta":           {"noodles", "zucchini noodles", "rice"},
	"noodles":         {"pasta", "rice noodles"},
	"bread":           {"tortillas", "crackers"},
	"chicken":         {"turkey", "tofu", "chickpeas"},
	"beef":            {"lentils", "mushroom", "turkey"},
	"shrimp":          {"chicken", "tofu"},
	"salmon":          {"trout", "tuna"},
	"yogurt":          {"sour cream", "coconut milk"},
	"honey":           {"maple syrup", "sugar"},
	"sugar":           {"honey", "maple syrup"},
}

// Alternative is one substitute option, annotated with whether the
// pantry already holds it.
type Alternative struct {
	Name     string `json:"name"`
	InPantry bool   `json:"in_pantry"`
}

// SubstituteResult reports the alternatives found for one ingredient.
type SubstituteResult struct {
	Ingredient   string        `json:"ingredient"`
	Alternatives []Alternative `json:"alternatives"`
}

func (e *Executor) suggestSubstitutes(missing string) interface{} {
	needle := strings.ToLower(strings.TrimSpace(missing))
	if needle == "" {
		return shopping.Result{Success: false, Message: "an ingredient name is required"}
	}

	var bestKey string
	for key := range substituteTable {
		if !strings.Contains(needle, key) && !strings.Contains(key, needle) {
			continue
		}
		if len(key) > len(bestKey) {
			bestKey = key
		}
	}
	if bestKey == "" {
		return shopping.Result{Success: false, Message: fmt.Sprintf("no substitutes known for %s", missing)}
	}

	options := substituteTable[bestKey]
	if len(options) > maxAlternatives {
		options = options[:maxAlternatives]
	}

	result := SubstituteResult{Ingredient: bestKey}
	for _, option := range options {
		result.Alternatives = append(result.Alternatives, Alternative{
			Name:     option,
			InPantry: e.inPantry(option),
		})
	}
	return result
}

func (e *Executor) inPantry(name string) bool {
	needle := strings.ToLower(name)
	for _, item := range e.pantryStore.ActiveItems() {
		held := strings.ToLower(item.Name)
		if strings.Contains(held, needle) || strings.Contains(needle, held) {
			return true
		}
	}
	return false
}
