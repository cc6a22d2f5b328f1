// Package chattools executes the tool calls requested by the
// conversational agent against the pantry and shopping stores. The tool
// surface is a closed set: every kind carries a typed argument record and
// dispatch is an exhaustive switch, so adding a tool is a compile-time
// checked change.
package chattools

import (
	"encoding/json"
	"fmt"

	"cookmate/internal/pantry"
	"cookmate/internal/shopping"
)

// Kind identifies one of the supported tools.
type Kind string

const (
	KindGetPantry          Kind = "getPantry"
	KindGetCart            Kind = "getCart"
	KindAddToCart          Kind = "addToCart"
	KindRemoveFromCart     Kind = "removeFromCart"
	KindUpdateCartItem     Kind = "updateCartItem"
	KindSummarizeCart      Kind = "summarizeCart"
	KindSuggestSubstitutes Kind = "suggestSubstitutes"
	KindUndoLastChange     Kind = "undoLastChange"
	KindUnknown            Kind = "unknown"
)

// Invocation is the wire shape the agent produces: a tool name and a raw
// argument object.
type Invocation struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// AddToCartArgs are the arguments for addToCart.
type AddToCartArgs struct {
	Name string  `json:"name"`
	Qty  float64 `json:"qty,omitempty"`
	Unit string  `json:"unit,omitempty"`
}

// RemoveFromCartArgs are the arguments for removeFromCart.
type RemoveFromCartArgs struct {
	Name string `json:"name"`
}

// UpdateCartItemArgs are the arguments for updateCartItem. Nil fields are
// left untouched.
type UpdateCartItemArgs struct {
	Name string   `json:"name"`
	Qty  *float64 `json:"qty,omitempty"`
	Unit *string  `json:"unit,omitempty"`
}

// SuggestSubstitutesArgs are the arguments for suggestSubstitutes.
type SuggestSubstitutesArgs struct {
	Missing string `json:"missing"`
}

// Call is the parsed, typed form of an invocation. Exactly one argument
// record is set, matching the kind.
type Call struct {
	Kind               Kind
	RawName            string
	AddToCart          *AddToCartArgs
	RemoveFromCart     *RemoveFromCartArgs
	UpdateCartItem     *UpdateCartItemArgs
	SuggestSubstitutes *SuggestSubstitutesArgs
}

// ParseCall maps a wire invocation onto a typed Call. Unknown tool names
// yield a KindUnknown call rather than an error; malformed arguments for
// a known tool are a contract violation and do error.
func ParseCall(inv Invocation) (Call, error) {
	call := Call{RawName: inv.Name}

	switch Kind(inv.Name) {
	case KindGetPantry, KindGetCart, KindSummarizeCart, KindUndoLastChange:
		call.Kind = Kind(inv.Name)
	case KindAddToCart:
		call.Kind = KindAddToCart
		call.AddToCart = &AddToCartArgs{}
		if err := unmarshalArgs(inv, call.AddToCart); err != nil {
			return Call{}, err
		}
	case KindRemoveFromCart:
		call.Kind = KindRemoveFromCart
		call.RemoveFromCart = &RemoveFromCartArgs{}
		if err := unmarshalArgs(inv, call.RemoveFromCart); err != nil {
			return Call{}, err
		}
	case KindUpdateCartItem:
		call.Kind = KindUpdateCartItem
		call.UpdateCartItem = &UpdateCartItemArgs{}
		if err := unmarshalArgs(inv, call.UpdateCartItem); err != nil {
			return Call{}, err
		}
	case KindSuggestSubstitutes:
		call.Kind = KindSuggestSubstitutes
		call.SuggestSubstitutes = &SuggestSubstitutesArgs{}
		if err := unmarshalArgs(inv, call.SuggestSubstitutes); err != nil {
			return Call{}, err
		}
	default:
		call.Kind = KindUnknown
	}

	return call, nil
}

func unmarshalArgs(inv Invocation, target interface{}) error {
	if len(inv.Arguments) == 0 {
		return nil
	}
	if err := json.Unmarshal(inv.Arguments, target); err != nil {
		return fmt.Errorf("malformed arguments for tool %s: %w", inv.Name, err)
	}
	return nil
}

// Outcome pairs a tool name with its structured result.
type Outcome struct {
	Tool    string      `json:"tool"`
	Payload interface{} `json:"payload"`
}

// Executor dispatches tool calls against the injected stores. It holds no
// state of its own; side effects land in the collaborators and are
// visible to later calls in the same batch.
type Executor struct {
	pantryStore *pantry.Store
	cart        *shopping.Engine
}

// NewExecutor creates an Executor over the given stores.
func NewExecutor(pantryStore *pantry.Store, cart *shopping.Engine) *Executor {
	return &Executor{pantryStore: pantryStore, cart: cart}
}

// ExecuteBatch runs the calls in the order received and returns one
// outcome per call.
func (e *Executor) ExecuteBatch(calls []Call) []Outcome {
	outcomes := make([]Outcome, 0, len(calls))
	for _, call := range calls {
		outcomes = append(outcomes, e.execute(call))
	}
	return outcomes
}

func (e *Executor) execute(call Call) Outcome {
	switch call.Kind {
	case KindGetPantry:
		return Outcome{Tool: string(call.Kind), Payload: e.pantryStore.ActiveItems()}
	case KindGetCart:
		return Outcome{Tool: string(call.Kind), Payload: e.cart.UnboughtItems()}
	case KindAddToCart:
		res := e.cart.Add(shopping.AddRequest{
			Name:         call.AddToCart.Name,
			SuggestedQty: call.AddToCart.Qty,
			Unit:         call.AddToCart.Unit,
			Reason:       shopping.ReasonMissingFromRecipe,
		})
		return Outcome{Tool: string(call.Kind), Payload: res}
	case KindRemoveFromCart:
		return Outcome{Tool: string(call.Kind), Payload: e.cart.Remove(call.RemoveFromCart.Name)}
	case KindUpdateCartItem:
		res := e.cart.Update(call.UpdateCartItem.Name, shopping.UpdateRequest{
			SuggestedQty: call.UpdateCartItem.Qty,
			Unit:         call.UpdateCartItem.Unit,
		})
		return Outcome{Tool: string(call.Kind), Payload: res}
	case KindSummarizeCart:
		return Outcome{Tool: string(call.Kind), Payload: e.cart.SummarizeByAisle()}
	case KindSuggestSubstitutes:
		return Outcome{Tool: string(call.Kind), Payload: e.suggestSubstitutes(call.SuggestSubstitutes.Missing)}
	case KindUndoLastChange:
		return Outcome{Tool: string(call.Kind), Payload: e.cart.Undo()}
	case KindUnknown:
		return Outcome{Tool: call.RawName, Payload: shopping.Result{
			Success: false,
			Message: fmt.Sprintf("tool %s is not implemented", call.RawName),
		}}
	}
	// The switch above is exhaustive over Kind values produced by ParseCall.
	return Outcome{Tool: call.RawName, Payload: shopping.Result{Success: false, Message: "tool not implemented"}}
}
