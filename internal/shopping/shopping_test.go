package shopping

import (
	"fmt"
	"testing"
	"time"
)

var fixedNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func newTestEngine() *Engine {
	e := NewEngine()
	e.now = func() time.Time { return fixedNow }
	seq := 0
	e.nextID = func() string {
		seq++
		return fmt.Sprintf("item-%d", seq)
	}
	return e
}

func TestAddAndDuplicate(t *testing.T) {
	e := newTestEngine()

	res := e.Add(AddRequest{Name: "Milk", SuggestedQty: 1, Unit: "l", Reason: ReasonLowStock})
	if !res.Success {
		t.Fatalf("Add failed: %s", res.Message)
	}
	if res.Item.Reason != ReasonLowStock {
		t.Errorf("Expected reason preserved, got %s", res.Item.Reason)
	}

	dup := e.Add(AddRequest{Name: "milk", Reason: ReasonUsedUp})
	if dup.Success {
		t.Fatal("Duplicate unbought name must be a no-op result")
	}
	if len(e.Items()) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(e.Items()))
	}

	// Once bought, the name may be queued again.
	e.MarkBought(e.Items()[0].ID)
	again := e.Add(AddRequest{Name: "milk", Reason: ReasonUsedUp})
	if !again.Success {
		t.Errorf("Re-adding after purchase should succeed: %s", again.Message)
	}
}

func TestAddRequiresName(t *testing.T) {
	e := newTestEngine()
	if res := e.Add(AddRequest{Name: "  "}); res.Success {
		t.Error("Blank names must be rejected with a result, not stored")
	}
}

func TestRemoveByIDAndName(t *testing.T) {
	e := newTestEngine()
	added := e.Add(AddRequest{Name: "Bread", Reason: ReasonUsedUp})

	if res := e.Remove("bread"); !res.Success {
		t.Fatalf("Remove by name failed: %s", res.Message)
	}
	if res := e.Remove(added.Item.ID); res.Success {
		t.Error("Removing an absent item must be a no-op result")
	}
}

func TestUpdateMergesFields(t *testing.T) {
	e := newTestEngine()
	e.Add(AddRequest{Name: "Rice", SuggestedQty: 1, Unit: "bag", Reason: ReasonLowStock})

	qty := 2.0
	res := e.Update("rice", UpdateRequest{SuggestedQty: &qty})
	if !res.Success {
		t.Fatalf("Update failed: %s", res.Message)
	}
	if res.Item.SuggestedQty != 2 || res.Item.Unit != "bag" {
		t.Errorf("Expected qty updated and unit untouched, got %+v", res.Item)
	}

	if res := e.Update("quinoa", UpdateRequest{SuggestedQty: &qty}); res.Success {
		t.Error("Updating an absent item must be a no-op result")
	}
}

func TestUndoAddRestoresExactState(t *testing.T) {
	e := newTestEngine()
	e.Add(AddRequest{Name: "Milk", Reason: ReasonLowStock})

	res := e.Add(AddRequest{Name: "Cheese", Reason: ReasonUsedUp})
	if !res.Success {
		t.Fatal("Add failed")
	}

	undo := e.Undo()
	if !undo.Success {
		t.Fatalf("Undo failed: %s", undo.Message)
	}
	items := e.Items()
	if len(items) != 1 || items[0].Name != "Milk" {
		t.Fatalf("Expected only Milk after undo, got %+v", items)
	}

	if second := e.Undo(); second.Success {
		t.Error("Second undo must fail with nothing to undo")
	}
}

func TestUndoRemoveAndUpdate(t *testing.T) {
	e := newTestEngine()
	e.Add(AddRequest{Name: "Milk", SuggestedQty: 1, Reason: ReasonLowStock})

	e.Remove("milk")
	if res := e.Undo(); !res.Success {
		t.Fatalf("Undo of remove failed: %s", res.Message)
	}
	if len(e.UnboughtItems()) != 1 {
		t.Fatal("Expected Milk back after undoing the removal")
	}

	qty := 3.0
	e.Update("milk", UpdateRequest{SuggestedQty: &qty})
	if res := e.Undo(); !res.Success {
		t.Fatalf("Undo of update failed: %s", res.Message)
	}
	if got := e.Items()[0].SuggestedQty; got != 1 {
		t.Errorf("Expected quantity reverted to 1, got %v", got)
	}
}

func TestUndoDepthIsOne(t *testing.T) {
	e := newTestEngine()
	e.Add(AddRequest{Name: "Milk", Reason: ReasonLowStock})
	e.Add(AddRequest{Name: "Eggs", Reason: ReasonLowStock})

	e.Undo() // reverts Eggs
	if res := e.Undo(); res.Success {
		t.Error("Only the most recent operation is undoable")
	}
	if len(e.Items()) != 1 {
		t.Errorf("Expected Milk to survive, got %+v", e.Items())
	}
}

func TestMarkBoughtRetainsItem(t *testing.T) {
	e := newTestEngine()
	added := e.Add(AddRequest{Name: "Butter", Reason: ReasonLowStock})

	res := e.MarkBought(added.Item.ID)
	if !res.Success {
		t.Fatalf("MarkBought failed: %s", res.Message)
	}
	if len(e.Items()) != 1 {
		t.Error("Bought items are retained for history")
	}
	if len(e.UnboughtItems()) != 0 {
		t.Error("Bought items must not appear as unbought")
	}
	if res := e.MarkBought("missing"); res.Success {
		t.Error("Marking a missing item must be a no-op result")
	}
}

func TestSummarizeByAisle(t *testing.T) {
	e := newTestEngine()
	for _, name := range []string{"tomato", "chicken breast", "milk", "unknown-xyz"} {
		if res := e.Add(AddRequest{Name: name, Reason: ReasonUsedUp}); !res.Success {
			t.Fatalf("Add %s failed: %s", name, res.Message)
		}
	}

	summary := e.SummarizeByAisle()

	expect := map[Aisle]string{
		AisleProduce:  "tomato",
		AisleProteins: "chicken breast",
		AisleDairy:    "milk",
		AisleMisc:     "unknown-xyz",
	}
	for aisle, name := range expect {
		items := summary[aisle]
		if len(items) != 1 || items[0].Name != name {
			t.Errorf("Expected %s in %s, got %+v", name, aisle, items)
		}
	}
}

func TestSummarizeByAisleSkipsBought(t *testing.T) {
	e := newTestEngine()
	added := e.Add(AddRequest{Name: "milk", Reason: ReasonLowStock})
	e.MarkBought(added.Item.ID)

	if summary := e.SummarizeByAisle(); len(summary) != 0 {
		t.Errorf("Bought items must not be summarized, got %+v", summary)
	}
}
