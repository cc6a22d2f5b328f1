package suggest

import "strings"

// Diet is the user's dietary profile. Each diet maps to a fixed list of
// restricted ingredient substrings used as a hard filter.
type Diet string

const (
	DietRegular     Diet = "regular"
	DietVegetarian  Diet = "vegetarian"
	DietVegan       Diet = "vegan"
	DietPescatarian Diet = "pescatarian"
	DietKeto        Diet = "keto"
	DietGlutenFree  Diet = "gluten_free"
)

var meatIngredients = []string{
	"chicken", "beef", "pork", "lamb", "turkey", "bacon", "ham", "sausage",
	"veal", "duck", "gelatin",
}

var seafoodIngredients = []string{
	"fish", "salmon", "tuna", "shrimp", "prawn", "crab", "anchov", "sardine",
	"mussel", "oyster", "squid",
}

var animalProducts = []string{
	"egg", "milk", "cheese", "butter", "cream", "yogurt", "honey", "feta",
	"parmesan", "mozzarella", "ghee",
}

// dietRestrictions is the diet → restricted-ingredient lookup. A recipe is
// excluded when any required ingredient substring-matches an entry.
var dietRestrictions = map[Diet][]string{
	DietVegetarian:  append(append([]string{}, meatIngredients...), seafoodIngredients...),
	DietVegan:       append(append(append([]string{}, meatIngredients...), seafoodIngredients...), animalProducts...),
	DietPescatarian: meatIngredients,
	DietKeto: {
		"sugar", "pasta", "bread", "rice", "potato", "flour", "noodle",
		"tortilla", "oats", "banana", "honey",
	},
	DietGlutenFree: {
		"wheat", "flour", "bread", "pasta", "noodle", "tortilla", "barley",
		"rye", "cracker", "soy sauce", "couscous",
	},
}

// Preferences captures the user's dietary constraints and dislikes.
type Preferences struct {
	Diet      Diet     `json:"diet"`
	Allergies []string `json:"allergies,omitempty"`
	Disliked  []string `json:"disliked,omitempty"`
}

// restrictedByDiet reports whether the ingredient hits the diet's
// restriction list.
func restrictedByDiet(diet Diet, ingredient string) bool {
	lowered := strings.ToLower(ingredient)
	for _, restricted := range dietRestrictions[diet] {
		if strings.Contains(lowered, restricted) {
			return true
		}
	}
	return false
}
