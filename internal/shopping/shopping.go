// Package shopping owns the replenishment list. Mutations return
// structured results instead of errors so the caller can surface them as
// informational messages, and the most recent add/remove/update can be
// reverted exactly once.
package shopping

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"cookmate/internal/undo"
)

// Reason records why an item landed on the list. It never changes after
// creation.
type Reason string

const (
	ReasonLowStock          Reason = "low_stock"
	ReasonUsedUp            Reason = "used_up"
	ReasonMissingFromRecipe Reason = "missing_from_recipe"
)

// Item is a single shopping list entry.
type Item struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	SuggestedQty float64   `json:"suggested_qty,omitempty"`
	Unit         string    `json:"unit,omitempty"`
	Reason       Reason    `json:"reason"`
	Bought       bool      `json:"bought"`
	AddedAt      time.Time `json:"added_at"`
}

// Result is the outcome of a list mutation. Success false carries an
// informational message, never a programmer error.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Item    *Item  `json:"item,omitempty"`
}

// opType tags the recorded inverse of a mutation.
type opType string

const (
	opAdd    opType = "add"
	opRemove opType = "remove"
	opUpdate opType = "update"
)

// operation captures enough of a mutation to replay its inverse.
type operation struct {
	kind   opType
	before *Item
	after  *Item
}

// Engine is the cart engine. It owns its item collection exclusively.
type Engine struct {
	items  []Item
	opLog  *undo.Stack[operation]
	now    func() time.Time
	nextID func() string
}

// NewEngine creates an empty shopping list engine with a single-slot
// operation log.
func NewEngine() *Engine {
	return &Engine{
		opLog:  undo.NewStack[operation](1),
		now:    time.Now,
		nextID: uuid.NewString,
	}
}

// Restore replaces the engine's contents, used when rehydrating a
// snapshot. The operation log does not survive restarts.
func (e *Engine) Restore(items []Item) {
	e.items = append([]Item(nil), items...)
	e.opLog.Clear()
}

// Items returns a copy of every entry, bought ones included.
func (e *Engine) Items() []Item {
	return append([]Item(nil), e.items...)
}

// UnboughtItems returns a copy of the entries still to buy.
func (e *Engine) UnboughtItems() []Item {
	var open []Item
	for _, item := range e.items {
		if !item.Bought {
			open = append(open, item)
		}
	}
	return open
}

// HasUnbought reports whether an unbought entry with the same normalized
// name is already queued.
func (e *Engine) HasUnbought(name string) bool {
	key := normalizeName(name)
	for _, item := range e.items {
		if !item.Bought && normalizeName(item.Name) == key {
			return true
		}
	}
	return false
}

// AddRequest carries the fields for a new list entry.
type AddRequest struct {
	Name         string
	SuggestedQty float64
	Unit         string
	Reason       Reason
}

// Add queues an item. If an unbought entry with the same normalized name
// exists the call is a no-op with an "already on list" result.
func (e *Engine) Add(req AddRequest) Result {
	if strings.TrimSpace(req.Name) == "" {
		return Result{Success: false, Message: "item name is required"}
	}
	if e.HasUnbought(req.Name) {
		return Result{Success: false, Message: fmt.Sprintf("%s is already on the list", req.Name)}
	}

	item := Item{
		ID:           e.nextID(),
		Name:         req.Name,
		SuggestedQty: req.SuggestedQty,
		Unit:         req.Unit,
		Reason:       req.Reason,
		AddedAt:      e.now(),
	}
	e.items = append(e.items, item)
	e.opLog.Push(operation{kind: opAdd, after: cloned(item)})
	return Result{Success: true, Message: fmt.Sprintf("Added %s to the list", item.Name), Item: cloned(item)}
}

// Remove deletes the unbought item matching the given ID or normalized
// name. Absence is a no-op result, not an error.
func (e *Engine) Remove(idOrName string) Result {
	key := normalizeName(idOrName)
	for i := range e.items {
		item := e.items[i]
		if item.Bought {
			continue
		}
		if item.ID == idOrName || normalizeName(item.Name) == key {
			e.items = append(e.items[:i], e.items[i+1:]...)
			e.opLog.Push(operation{kind: opRemove, before: cloned(item)})
			return Result{Success: true, Message: fmt.Sprintf("Removed %s from the list", item.Name), Item: cloned(item)}
		}
	}
	return Result{Success: false, Message: fmt.Sprintf("%s is not on the list", idOrName)}
}

// UpdateRequest carries the optional fields of an update; nil fields are
// left untouched.
type UpdateRequest struct {
	SuggestedQty *float64
	Unit         *string
}

// Update merges the provided fields into the unbought item with the given
// normalized name.
func (e *Engine) Update(name string, req UpdateRequest) Result {
	key := normalizeName(name)
	for i := range e.items {
		if e.items[i].Bought || normalizeName(e.items[i].Name) != key {
			continue
		}
		before := cloned(e.items[i])
		if req.SuggestedQty != nil {
			e.items[i].SuggestedQty = *req.SuggestedQty
		}
		if req.Unit != nil {
			e.items[i].Unit = *req.Unit
		}
		e.opLog.Push(operation{kind: opUpdate, before: before, after: cloned(e.items[i])})
		return Result{Success: true, Message: fmt.Sprintf("Updated %s", e.items[i].Name), Item: cloned(e.items[i])}
	}
	return Result{Success: false, Message: fmt.Sprintf("%s is not on the list", name)}
}

// MarkBought flags the item as bought. Bought entries are retained for
// history and grouping, not deleted. Marking is not undoable.
func (e *Engine) MarkBought(id string) Result {
	for i := range e.items {
		if e.items[i].ID == id {
			e.items[i].Bought = true
			return Result{Success: true, Message: fmt.Sprintf("Marked %s as bought", e.items[i].Name), Item: cloned(e.items[i])}
		}
	}
	return Result{Success: false, Message: "item not found"}
}

// Undo reverts the most recent add, remove, or update by replaying its
// stored inverse. A second undo without a new mutation fails.
func (e *Engine) Undo() Result {
	op, ok := e.opLog.Pop()
	if !ok {
		return Result{Success: false, Message: "nothing to undo"}
	}

	switch op.kind {
	case opAdd:
		for i := range e.items {
			if e.items[i].ID == op.after.ID {
				e.items = append(e.items[:i], e.items[i+1:]...)
				break
			}
		}
		return Result{Success: true, Message: fmt.Sprintf("Removed %s again", op.after.Name)}
	case opRemove:
		e.items = append(e.items, *op.before)
		return Result{Success: true, Message: fmt.Sprintf("Put %s back on the list", op.before.Name)}
	case opUpdate:
		for i := range e.items {
			if e.items[i].ID == op.before.ID {
				e.items[i] = *op.before
				break
			}
		}
		return Result{Success: true, Message: fmt.Sprintf("Reverted %s", op.before.Name)}
	}
	return Result{Success: false, Message: "nothing to undo"}
}

func cloned(item Item) *Item {
	c := item
	return &c
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
