// Package pantry owns the collection of ingredients the user has at home.
// Insertion merges by normalized name, recipe consumption matches by
// bidirectional substring, and confidence bookkeeping supports a
// single-level undo of the last "recipe cooked" event.
package pantry

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"cookmate/internal/recipe"
	"cookmate/internal/undo"
	"cookmate/internal/vision"
)

// Source records how an item entered the pantry.
type Source string

const (
	SourcePhoto  Source = "photo"
	SourceManual Source = "manual"
)

// usageRetention is the share of confidence an item keeps after being
// consumed by a cooked recipe.
const usageRetention = 0.5

// Item is a single pantry entry. Merge identity is the lower-cased name,
// not the ID.
type Item struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Quantity   float64   `json:"quantity,omitempty"`
	Unit       string    `json:"unit,omitempty"`
	Source     Source    `json:"source"`
	Confidence float64   `json:"confidence,omitempty"`
	LastSeenAt time.Time `json:"last_seen_at"`
	Used       bool      `json:"used"`
}

// usageEvent captures the item state before a recipe was marked as
// cooked, so the event can be reverted once. Every recorded item was
// active at the time, so undo clears the used flag alongside restoring
// the confidence.
type usageEvent struct {
	recipeID    string
	confidences map[string]float64
}

// Store is the authoritative pantry collection.
type Store struct {
	items       []Item
	decayAnchor time.Time
	usageUndo   *undo.Stack[usageEvent]
	now         func() time.Time
}

// NewStore creates an empty pantry store.
func NewStore() *Store {
	return &Store{
		usageUndo: undo.NewStack[usageEvent](1),
		now:       time.Now,
	}
}

// Restore replaces the store's contents, used when rehydrating a snapshot.
func (s *Store) Restore(items []Item, decayAnchor time.Time) {
	s.items = append([]Item(nil), items...)
	s.decayAnchor = decayAnchor
	s.usageUndo.Clear()
}

// Items returns a copy of every entry, in insertion order.
func (s *Store) Items() []Item {
	return append([]Item(nil), s.items...)
}

// ActiveItems returns a copy of all entries not marked used.
func (s *Store) ActiveItems() []Item {
	var active []Item
	for _, item := range s.items {
		if !item.Used {
			active = append(active, item)
		}
	}
	return active
}

// DecayAnchor returns the timestamp of the last completed restock pass.
func (s *Store) DecayAnchor() time.Time {
	return s.decayAnchor
}

// SetDecayAnchor records the completion time of a restock pass.
func (s *Store) SetDecayAnchor(t time.Time) {
	s.decayAnchor = t
}

// Add inserts an item, merging with an existing entry of the same
// normalized name: quantities sum (defaulting to 1 on either side),
// LastSeenAt refreshes, and a provided confidence replaces the old one.
// The resulting entry is returned.
func (s *Store) Add(item Item) Item {
	key := normalizeName(item.Name)
	now := s.now()

	for i := range s.items {
		if normalizeName(s.items[i].Name) != key {
			continue
		}
		existing := &s.items[i]
		existing.Quantity = defaultQty(existing.Quantity) + defaultQty(item.Quantity)
		existing.LastSeenAt = now
		if item.Confidence > 0 {
			existing.Confidence = item.Confidence
		}
		if item.Unit != "" {
			existing.Unit = item.Unit
		}
		return *existing
	}

	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.LastSeenAt.IsZero() {
		item.LastSeenAt = now
	}
	s.items = append(s.items, item)
	return item
}

// AddBatch inserts items in order; later entries may merge with ones
// inserted earlier in the same batch.
func (s *Store) AddBatch(items []Item) []Item {
	results := make([]Item, 0, len(items))
	for _, item := range items {
		results = append(results, s.Add(item))
	}
	return results
}

// CommitDetections folds vision output into the pantry as photo-sourced
// items.
func (s *Store) CommitDetections(detections []vision.Detection) []Item {
	items := make([]Item, 0, len(detections))
	for _, det := range detections {
		items = append(items, Item{
			Name:       det.Name,
			Source:     SourcePhoto,
			Confidence: det.Confidence,
		})
	}
	return s.AddBatch(items)
}

// SetConfidence overwrites the confidence of the item with the given ID.
// Used by the decay pass, which owns the decay arithmetic.
func (s *Store) SetConfidence(id string, confidence float64) bool {
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Confidence = confidence
			return true
		}
	}
	return false
}

// ToggleUsed flips the used flag for the item with the given ID. It
// reports whether the item was found.
func (s *Store) ToggleUsed(id string) bool {
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Used = !s.items[i].Used
			return true
		}
	}
	return false
}

// Remove deletes the item with the given ID. No tombstone is retained;
// undo-of-removal is the caller's responsibility.
func (s *Store) Remove(id string) bool {
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

// ConsumeForRecipe marks every active item whose name overlaps any of the
// given ingredient names as used, and returns how many items flipped.
// Zero matches is a valid, non-error outcome.
func (s *Store) ConsumeForRecipe(ingredientNames []string) int {
	count := 0
	for i := range s.items {
		if s.items[i].Used {
			continue
		}
		for _, name := range ingredientNames {
			if recipe.NamesOverlap(s.items[i].Name, name) {
				s.items[i].Used = true
				count++
				break
			}
		}
	}
	return count
}

// ApplyRecipeUsage reduces the confidence of every active item matched by
// the recipe's ingredients and marks those items used, recording the prior
// values so the event can be undone once. The reduction is deterministic
// for identical inputs.
func (s *Store) ApplyRecipeUsage(recipeID, recipeTitle string, ingredients []string) int {
	event := usageEvent{
		recipeID:    recipeID,
		confidences: map[string]float64{},
	}

	for i := range s.items {
		if s.items[i].Used {
			continue
		}
		for _, name := range ingredients {
			if recipe.NamesOverlap(s.items[i].Name, name) {
				event.confidences[s.items[i].ID] = s.items[i].Confidence
				s.items[i].Confidence *= usageRetention
				break
			}
		}
	}

	matched := s.ConsumeForRecipe(ingredients)
	if matched > 0 {
		s.usageUndo.Push(event)
	}
	return matched
}

// UndoLastUsage restores the confidence values and used flags captured by
// the most recent ApplyRecipeUsage. It reports false when there is nothing
// to undo.
func (s *Store) UndoLastUsage() bool {
	event, ok := s.usageUndo.Pop()
	if !ok {
		return false
	}
	for i := range s.items {
		if prev, found := event.confidences[s.items[i].ID]; found {
			s.items[i].Confidence = prev
			s.items[i].Used = false
		}
	}
	return true
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func defaultQty(q float64) float64 {
	if q <= 0 {
		return 1
	}
	return q
}
