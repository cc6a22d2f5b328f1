package state

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"cookmate/internal/database"
	"cookmate/internal/shopping"
)

func newTestHistory(t *testing.T) *HistoryRepository {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewHistoryRepository(db.SQL)
}

func TestHistoryRepository(t *testing.T) {
	repo := newTestHistory(t)
	ctx := context.Background()

	t.Run("Latest-Empty", func(t *testing.T) {
		_, ok, err := repo.Latest(ctx)
		if err != nil {
			t.Fatalf("Latest on empty history: %v", err)
		}
		if ok {
			t.Error("Expected no snapshot in an empty history")
		}
	})

	first := Snapshot{
		ShoppingItems: []shopping.Item{{ID: "s1", Name: "milk", Reason: shopping.ReasonLowStock}},
		SavedAt:       time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	second := Snapshot{
		ShoppingItems: []shopping.Item{{ID: "s2", Name: "bread", Reason: shopping.ReasonUsedUp}},
		SavedAt:       time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
	}

	t.Run("Append-And-Latest", func(t *testing.T) {
		if err := repo.Append(ctx, first); err != nil {
			t.Fatalf("Failed to append first snapshot: %v", err)
		}
		if err := repo.Append(ctx, second); err != nil {
			t.Fatalf("Failed to append second snapshot: %v", err)
		}

		got, ok, err := repo.Latest(ctx)
		if err != nil {
			t.Fatalf("Failed to load latest snapshot: %v", err)
		}
		if !ok {
			t.Fatal("Expected a snapshot after appending")
		}
		if len(got.ShoppingItems) != 1 || got.ShoppingItems[0].Name != "bread" {
			t.Errorf("Expected the newer snapshot, got %+v", got.ShoppingItems)
		}
	})

	t.Run("Prune", func(t *testing.T) {
		deleted, err := repo.Prune(ctx, 30)
		if err != nil {
			t.Fatalf("Failed to prune: %v", err)
		}
		if deleted != 2 {
			t.Errorf("Expected 2 pruned rows, got %d", deleted)
		}

		_, ok, err := repo.Latest(ctx)
		if err != nil {
			t.Fatalf("Latest after prune: %v", err)
		}
		if ok {
			t.Error("Expected history to be empty after pruning")
		}
	})
}
