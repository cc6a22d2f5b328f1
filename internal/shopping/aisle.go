package shopping

import "strings"

// Aisle is a grocery-store category bucket used to group the list.
type Aisle string

const (
	AisleProduce  Aisle = "Produce"
	AisleProteins Aisle = "Proteins"
	AisleDairy    Aisle = "Dairy"
	AisleBakery   Aisle = "Bakery"
	AisleFrozen   Aisle = "Frozen"
	AislePantry   Aisle = "Pantry"
	AisleMisc     Aisle = "Misc"
)

// aisleRule pairs an aisle with the name keywords that map into it.
type aisleRule struct {
	aisle    Aisle
	keywords []string
}

// aisleRules is evaluated in order; the first matching category wins.
var aisleRules = []aisleRule{
	{AisleProduce, []string{
		"tomato", "onion", "garlic", "carrot", "potato", "lettuce", "spinach",
		"cucumber", "pepper", "broccoli", "cabbage", "apple", "banana", "lemon",
		"lime", "avocado", "mushroom", "herb", "basil", "cilantro", "fruit",
		"berries", "celery", "zucchini", "ginger",
	}},
	{AisleProteins, []string{
		"chicken", "beef", "pork", "lamb", "turkey", "fish", "salmon", "tuna",
		"shrimp", "tofu", "egg", "beans", "lentil", "chickpea", "sausage",
		"bacon", "ham",
	}},
	{AisleDairy, []string{
		"milk", "cheese", "yogurt", "butter", "cream", "feta", "parmesan",
		"mozzarella",
	}},
	{AisleBakery, []string{
		"bread", "bagel", "bun", "tortilla", "croissant", "pita", "baguette",
	}},
	{AisleFrozen, []string{
		"frozen", "ice cream", "peas",
	}},
	{AislePantry, []string{
		"rice", "pasta", "flour", "sugar", "salt", "oil", "vinegar", "sauce",
		"broth", "stock", "spice", "cereal", "oats", "noodle", "canned", "curry",
	}},
}

// ClassifyAisle maps an item name to its aisle via keyword matching.
// Unmatched names fall into Misc.
func ClassifyAisle(name string) Aisle {
	lowered := strings.ToLower(name)
	for _, rule := range aisleRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lowered, keyword) {
				return rule.aisle
			}
		}
	}
	return AisleMisc
}

// SummarizeByAisle groups the unbought items into aisle buckets.
func (e *Engine) SummarizeByAisle() map[Aisle][]Item {
	summary := map[Aisle][]Item{}
	for _, item := range e.items {
		if item.Bought {
			continue
		}
		aisle := ClassifyAisle(item.Name)
		summary[aisle] = append(summary[aisle], item)
	}
	return summary
}
