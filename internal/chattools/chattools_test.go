package chattools

import (
	"encoding/json"
	"testing"

	"cookmate/internal/pantry"
	"cookmate/internal/shopping"
)

func newTestExecutor() (*Executor, *pantry.Store, *shopping.Engine) {
	pantryStore := pantry.NewStore()
	cart := shopping.NewEngine()
	return NewExecutor(pantryStore, cart), pantryStore, cart
}

func mustParse(t *testing.T, name, args string) Call {
	t.Helper()
	call, err := ParseCall(Invocation{Name: name, Arguments: json.RawMessage(args)})
	if err != nil {
		t.Fatalf("ParseCall(%s) returned error: %v", name, err)
	}
	return call
}

func TestParseCallTypedArguments(t *testing.T) {
	call := mustParse(t, "addToCart", `{"name":"oat milk","qty":2,"unit":"l"}`)
	if call.Kind != KindAddToCart {
		t.Fatalf("kind = %s, want %s", call.Kind, KindAddToCart)
	}
	if call.AddToCart == nil || call.AddToCart.Name != "oat milk" || call.AddToCart.Qty != 2 || call.AddToCart.Unit != "l" {
		t.Errorf("unexpected args: %+v", call.AddToCart)
	}

	call = mustParse(t, "updateCartItem", `{"name":"oat milk","qty":3}`)
	if call.UpdateCartItem == nil || call.UpdateCartItem.Qty == nil || *call.UpdateCartItem.Qty != 3 {
		t.Errorf("qty not parsed: %+v", call.UpdateCartItem)
	}
	if call.UpdateCartItem.Unit != nil {
		t.Errorf("unit should stay nil when absent, got %v", *call.UpdateCartItem.Unit)
	}
}

func TestParseCallUnknownTool(t *testing.T) {
	call := mustParse(t, "orderGroceries", `{"store":"anywhere"}`)
	if call.Kind != KindUnknown {
		t.Fatalf("kind = %s, want %s", call.Kind, KindUnknown)
	}
	if call.RawName != "orderGroceries" {
		t.Errorf("raw name = %s", call.RawName)
	}
}

func TestParseCallMalformedArguments(t *testing.T) {
	_, err := ParseCall(Invocation{Name: "addToCart", Arguments: json.RawMessage(`{"name":`)})
	if err == nil {
		t.Fatal("expected error for malformed arguments")
	}
}

func TestBatchMutationsVisibleToLaterCalls(t *testing.T) {
	executor, _, _ := newTestExecutor()

	calls := []Call{
		mustParse(t, "addToCart", `{"name":"tomato","qty":4}`),
		mustParse(t, "addToCart", `{"name":"chicken breast"}`),
		mustParse(t, "summarizeCart", ``),
	}
	outcomes := executor.ExecuteBatch(calls)
	if len(outcomes) != 3 {
		t.Fatalf("got %d outcomes, want 3", len(outcomes))
	}

	summary, ok := outcomes[2].Payload.(map[shopping.Aisle][]shopping.Item)
	if !ok {
		t.Fatalf("summarizeCart payload has type %T", outcomes[2].Payload)
	}
	if len(summary[shopping.AisleProduce]) != 1 || summary[shopping.AisleProduce][0].Name != "tomato" {
		t.Errorf("produce aisle = %+v", summary[shopping.AisleProduce])
	}
	if len(summary[shopping.AisleProteins]) != 1 {
		t.Errorf("proteins aisle = %+v", summary[shopping.AisleProteins])
	}
}

func TestUnknownToolYieldsNotImplemented(t *testing.T) {
	executor, _, _ := newTestExecutor()

	outcomes := executor.ExecuteBatch([]Call{mustParse(t, "orderGroceries", `{}`)})
	res, ok := outcomes[0].Payload.(shopping.Result)
	if !ok {
		t.Fatalf("payload has type %T", outcomes[0].Payload)
	}
	if res.Success {
		t.Error("unknown tool should not succeed")
	}
	if res.Message != "tool orderGroceries is not implemented" {
		t.Errorf("message = %q", res.Message)
	}
}

func TestUndoThroughTool(t *testing.T) {
	executor, _, cart := newTestExecutor()

	executor.ExecuteBatch([]Call{mustParse(t, "addToCart", `{"name":"rice"}`)})
	outcomes := executor.ExecuteBatch([]Call{mustParse(t, "undoLastChange", ``)})

	res := outcomes[0].Payload.(shopping.Result)
	if !res.Success {
		t.Fatalf("undo failed: %s", res.Message)
	}
	if len(cart.UnboughtItems()) != 0 {
		t.Error("cart should be empty after undoing the add")
	}

	again := executor.ExecuteBatch([]Call{mustParse(t, "undoLastChange", ``)})
	if again[0].Payload.(shopping.Result).Success {
		t.Error("second undo without a new mutation should fail")
	}
}

func TestGetPantryReturnsActiveItems(t *testing.T) {
	executor, pantryStore, _ := newTestExecutor()
	pantryStore.Add(pantry.Item{Name: "Rice", Confidence: 0.9})
	used := pantryStore.Add(pantry.Item{Name: "Old Bread", Confidence: 0.9})
	pantryStore.ToggleUsed(used.ID)

	outcomes := executor.ExecuteBatch([]Call{mustParse(t, "getPantry", ``)})
	items := outcomes[0].Payload.([]pantry.Item)
	if len(items) != 1 || items[0].Name != "Rice" {
		t.Errorf("active items = %+v", items)
	}
}

func TestSuggestSubstitutes(t *testing.T) {
	executor, pantryStore, _ := newTestExecutor()
	pantryStore.Add(pantry.Item{Name: "oat milk", Confidence: 0.9})

	outcomes := executor.ExecuteBatch([]Call{
		mustParse(t, "suggestSubstitutes", `{"missing":"coconut milk"}`),
	})
	result, ok := outcomes[0].Payload.(SubstituteResult)
	if !ok {
		t.Fatalf("payload has type %T: %+v", outcomes[0].Payload, outcomes[0].Payload)
	}

	// "coconut milk" must win over the shorter "milk" key.
	if result.Ingredient != "coconut milk" {
		t.Fatalf("matched key = %s", result.Ingredient)
	}
	if len(result.Alternatives) == 0 || len(result.Alternatives) > 3 {
		t.Fatalf("alternatives = %+v", result.Alternatives)
	}
	var sawOatMilk bool
	for _, alt := range result.Alternatives {
		if alt.Name == "oat milk" {
			sawOatMilk = true
			if !alt.InPantry {
				t.Error("oat milk is in the pantry but not annotated")
			}
		} else if alt.InPantry {
			t.Errorf("%s should not be annotated as in pantry", alt.Name)
		}
	}
	if !sawOatMilk {
		t.Errorf("expected oat milk among alternatives: %+v", result.Alternatives)
	}
}

func TestSuggestSubstitutesUnknownIngredient(t *testing.T) {
	executor, _, _ := newTestExecutor()

	outcomes := executor.ExecuteBatch([]Call{
		mustParse(t, "suggestSubstitutes", `{"missing":"dragonfruit syrup"}`),
	})
	res, ok := outcomes[0].Payload.(shopping.Result)
	if !ok {
		t.Fatalf("payload has type %T", outcomes[0].Payload)
	}
	if res.Success {
		t.Error("unknown ingredient should not succeed")
	}
}

func TestRemoveAndUpdateThroughTools(t *testing.T) {
	executor, _, cart := newTestExecutor()

	executor.ExecuteBatch([]Call{
		mustParse(t, "addToCart", `{"name":"milk","qty":1,"unit":"l"}`),
	})
	outcomes := executor.ExecuteBatch([]Call{
		mustParse(t, "updateCartItem", `{"name":"milk","qty":2}`),
	})
	res := outcomes[0].Payload.(shopping.Result)
	if !res.Success || res.Item.SuggestedQty != 2 || res.Item.Unit != "l" {
		t.Errorf("update result = %+v", res)
	}

	outcomes = executor.ExecuteBatch([]Call{
		mustParse(t, "removeFromCart", `{"name":"milk"}`),
	})
	if !outcomes[0].Payload.(shopping.Result).Success {
		t.Error("remove should succeed")
	}
	if len(cart.UnboughtItems()) != 0 {
		t.Error("cart should be empty")
	}
}
