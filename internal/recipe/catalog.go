package recipe

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed catalog.json
var catalogJSON []byte

// LoadCatalog parses the embedded static recipe catalog.
func LoadCatalog() ([]Recipe, error) {
	var recipes []Recipe
	if err := json.Unmarshal(catalogJSON, &recipes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal embedded catalog: %w", err)
	}
	return recipes, nil
}
