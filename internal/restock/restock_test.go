package restock

import (
	"testing"
	"time"

	"cookmate/internal/pantry"
	"cookmate/internal/shopping"
)

var day0 = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func seedItem(store *pantry.Store, name string, qty, confidence float64, lastSeen time.Time) pantry.Item {
	item := store.Add(pantry.Item{
		Name:       name,
		Quantity:   qty,
		Source:     pantry.SourcePhoto,
		Confidence: confidence,
		LastSeenAt: lastSeen,
	})
	return item
}

func TestRunDecaysByElapsedTime(t *testing.T) {
	store := pantry.NewStore()
	cart := shopping.NewEngine()
	engine := NewEngine(store, cart)

	milk := seedItem(store, "milk", 1, 0.9, day0)

	outcome := engine.Run(day0.Add(4 * 24 * time.Hour))

	if outcome.DecayedItems != 1 {
		t.Fatalf("Expected 1 decayed item, got %d", outcome.DecayedItems)
	}
	got := findConfidence(t, store, milk.ID)
	want := 0.9 - 4*DefaultDailyDecay
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Expected confidence %v after 4 days, got %v", want, got)
	}
	if len(outcome.QueuedItems) != 0 {
		t.Errorf("0.7 is above the threshold, nothing should queue: %v", outcome.QueuedItems)
	}
}

func TestRunQueuesLowStockOnce(t *testing.T) {
	store := pantry.NewStore()
	cart := shopping.NewEngine()
	engine := NewEngine(store, cart)

	seedItem(store, "milk", 2, 0.3, day0)

	// 0.3 - 2 days * 0.05 = 0.2, below the 0.25 threshold.
	outcome := engine.Run(day0.Add(2 * 24 * time.Hour))
	if len(outcome.QueuedItems) != 1 || outcome.QueuedItems[0] != "milk" {
		t.Fatalf("Expected milk queued, got %v", outcome.QueuedItems)
	}

	queued := cart.UnboughtItems()
	if len(queued) != 1 {
		t.Fatalf("Expected 1 cart entry, got %d", len(queued))
	}
	if queued[0].Reason != shopping.ReasonLowStock {
		t.Errorf("Expected low_stock reason, got %s", queued[0].Reason)
	}
	if queued[0].SuggestedQty != 2 {
		t.Errorf("Expected last known quantity suggested, got %v", queued[0].SuggestedQty)
	}

	// A later pass keeps decaying but must not duplicate the entry.
	again := engine.Run(day0.Add(3 * 24 * time.Hour))
	if len(again.QueuedItems) != 0 {
		t.Errorf("Expected no duplicate queueing, got %v", again.QueuedItems)
	}
	if len(cart.UnboughtItems()) != 1 {
		t.Errorf("Expected cart unchanged, got %d entries", len(cart.UnboughtItems()))
	}
}

func TestRunAnchorsPreventDoubleDecay(t *testing.T) {
	store := pantry.NewStore()
	cart := shopping.NewEngine()
	engine := NewEngine(store, cart)

	milk := seedItem(store, "milk", 1, 0.9, day0)

	// Two passes at day 2 and day 4 must decay the same total amount as
	// one pass at day 4.
	engine.Run(day0.Add(2 * 24 * time.Hour))
	engine.Run(day0.Add(4 * 24 * time.Hour))

	got := findConfidence(t, store, milk.ID)
	want := 0.9 - 4*DefaultDailyDecay
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Expected %v after split passes, got %v", want, got)
	}
}

func TestRunBoundsAtZero(t *testing.T) {
	store := pantry.NewStore()
	cart := shopping.NewEngine()
	engine := NewEngine(store, cart)

	milk := seedItem(store, "milk", 1, 0.1, day0)

	engine.Run(day0.Add(60 * 24 * time.Hour))

	if got := findConfidence(t, store, milk.ID); got != 0 {
		t.Errorf("Confidence must bound at 0, got %v", got)
	}
}

func TestRunSkipsUsedItems(t *testing.T) {
	store := pantry.NewStore()
	cart := shopping.NewEngine()
	engine := NewEngine(store, cart)

	item := seedItem(store, "milk", 1, 0.3, day0)
	store.ToggleUsed(item.ID)

	outcome := engine.Run(day0.Add(5 * 24 * time.Hour))
	if outcome.DecayedItems != 0 || len(outcome.QueuedItems) != 0 {
		t.Errorf("Used items must be skipped, got %+v", outcome)
	}
}

func findConfidence(t *testing.T, store *pantry.Store, id string) float64 {
	t.Helper()
	for _, item := range store.Items() {
		if item.ID == id {
			return item.Confidence
		}
	}
	t.Fatalf("Item %s not found", id)
	return 0
}
