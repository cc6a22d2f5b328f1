package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"cookmate/internal/learning"
	"cookmate/internal/pantry"
	"cookmate/internal/shopping"
	"cookmate/internal/suggest"
)

func TestFileStore(t *testing.T) {
	tempDir := t.TempDir()

	store, err := NewFileStore(tempDir)
	if err != nil {
		t.Fatalf("Failed to create FileStore: %v", err)
	}

	savedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	snap := Snapshot{
		Preferences: suggest.Preferences{Diet: suggest.DietVegetarian, Allergies: []string{"peanut"}},
		PantryItems: []pantry.Item{
			{ID: "p1", Name: "rice", Quantity: 1, Unit: "kg", Source: "manual", Confidence: 1},
		},
		ShoppingItems: []shopping.Item{
			{ID: "s1", Name: "oat milk", Reason: shopping.ReasonLowStock, AddedAt: savedAt},
		},
		Signals: []learning.Signal{
			{Timestamp: savedAt, Type: learning.SignalAccepted, RecipeID: "cm-001", Tags: []string{"vegetarian"}},
		},
		Learning: learning.State{TagWeights: map[string]float64{"vegetarian": 2}, LastUpdated: savedAt},
		SavedAt:  savedAt,
	}

	t.Run("Exists-False", func(t *testing.T) {
		if store.Exists() {
			t.Error("Expected no snapshot before the first save")
		}
	})

	t.Run("Load-Empty", func(t *testing.T) {
		got, err := store.Load()
		if err != nil {
			t.Fatalf("Failed to load missing snapshot: %v", err)
		}
		if len(got.PantryItems) != 0 || len(got.ShoppingItems) != 0 {
			t.Errorf("Expected an empty snapshot, got %+v", got)
		}
	})

	t.Run("Save", func(t *testing.T) {
		if err := store.Save(snap); err != nil {
			t.Fatalf("Failed to save snapshot: %v", err)
		}
		if _, err := os.Stat(filepath.Join(tempDir, snapshotFilename)); os.IsNotExist(err) {
			t.Error("Expected snapshot file to be created")
		}
		if _, err := os.Stat(filepath.Join(tempDir, snapshotFilename+".tmp")); !os.IsNotExist(err) {
			t.Error("Temp file should not survive a successful save")
		}
	})

	t.Run("Load", func(t *testing.T) {
		got, err := store.Load()
		if err != nil {
			t.Fatalf("Failed to load snapshot: %v", err)
		}
		if got.Preferences.Diet != suggest.DietVegetarian {
			t.Errorf("Expected diet '%s', got '%s'", suggest.DietVegetarian, got.Preferences.Diet)
		}
		if len(got.PantryItems) != 1 || got.PantryItems[0].Name != "rice" {
			t.Errorf("Unexpected pantry items: %+v", got.PantryItems)
		}
		if got.Learning.TagWeights["vegetarian"] != 2 {
			t.Errorf("Unexpected learning weights: %+v", got.Learning.TagWeights)
		}
		if !got.SavedAt.Equal(savedAt) {
			t.Errorf("Expected saved_at %v, got %v", savedAt, got.SavedAt)
		}
	})

	t.Run("Save-Overwrites", func(t *testing.T) {
		snap.ShoppingItems = nil
		if err := store.Save(snap); err != nil {
			t.Fatalf("Failed to overwrite snapshot: %v", err)
		}
		got, err := store.Load()
		if err != nil {
			t.Fatalf("Failed to reload snapshot: %v", err)
		}
		if len(got.ShoppingItems) != 0 {
			t.Errorf("Expected shopping items to be cleared, got %+v", got.ShoppingItems)
		}
	})
}
