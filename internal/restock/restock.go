// Package restock runs the confidence-decay pass: pantry certainty fades
// with time, and items that fall below the low-stock threshold are queued
// on the shopping list. The pass is explicit: callers trigger it, it
// never runs on a timer.
package restock

import (
	"time"

	"cookmate/internal/pantry"
	"cookmate/internal/shopping"
)

const (
	// DefaultDailyDecay is how much certainty an item loses per elapsed day.
	DefaultDailyDecay = 0.05

	// DefaultLowStockThreshold is the confidence below which an item is
	// assumed to be running out.
	DefaultLowStockThreshold = 0.25
)

// Engine decays pantry confidence and feeds the shopping list.
type Engine struct {
	pantryStore *pantry.Store
	cart        *shopping.Engine
	dailyDecay  float64
	threshold   float64
}

// NewEngine creates a decay engine over the given stores with the default
// decay rate and threshold.
func NewEngine(pantryStore *pantry.Store, cart *shopping.Engine) *Engine {
	return &Engine{
		pantryStore: pantryStore,
		cart:        cart,
		dailyDecay:  DefaultDailyDecay,
		threshold:   DefaultLowStockThreshold,
	}
}

// Outcome reports what a single pass did.
type Outcome struct {
	DecayedItems int
	QueuedItems  []string
}

// Run decays every active pantry item's confidence according to the time
// elapsed since it was last seen (or since the previous pass, whichever is
// later) and queues a low-stock shopping entry for items that crossed the
// threshold. Items already queued unbought are not duplicated.
func (e *Engine) Run(now time.Time) Outcome {
	outcome := Outcome{}
	anchor := e.pantryStore.DecayAnchor()

	items := e.pantryStore.Items()
	for _, item := range items {
		if item.Used || item.Confidence <= 0 {
			continue
		}

		since := item.LastSeenAt
		if anchor.After(since) {
			since = anchor
		}
		days := now.Sub(since).Hours() / 24
		if days <= 0 {
			continue
		}

		decayed := item.Confidence - e.dailyDecay*days
		if decayed < 0 {
			decayed = 0
		}
		if decayed == item.Confidence {
			continue
		}

		e.pantryStore.SetConfidence(item.ID, decayed)
		outcome.DecayedItems++

		if decayed < e.threshold && !e.cart.HasUnbought(item.Name) {
			res := e.cart.Add(shopping.AddRequest{
				Name:         item.Name,
				SuggestedQty: item.Quantity,
				Unit:         item.Unit,
				Reason:       shopping.ReasonLowStock,
			})
			if res.Success {
				outcome.QueuedItems = append(outcome.QueuedItems, item.Name)
			}
		}
	}

	e.pantryStore.SetDecayAnchor(now)
	return outcome
}
