// Package state bundles every persistent piece of the app into one
// snapshot and stores it as a JSON file plus a sqlite history row. The
// file is the working copy; the history is what undo-across-restarts and
// remote sync read from.
package state

import (
	"time"

	"cookmate/internal/learning"
	"cookmate/internal/pantry"
	"cookmate/internal/shopping"
	"cookmate/internal/suggest"
)

// Snapshot is the full persisted state of a single user's kitchen.
type Snapshot struct {
	Preferences       suggest.Preferences `json:"preferences"`
	PantryItems       []pantry.Item       `json:"pantry_items"`
	PantryDecayAnchor time.Time           `json:"pantry_decay_anchor"`
	ShoppingItems     []shopping.Item     `json:"shopping_items"`
	Signals           []learning.Signal   `json:"signals"`
	Learning          learning.State      `json:"learning"`
	SavedAt           time.Time           `json:"saved_at"`
}
