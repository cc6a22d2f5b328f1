// Package learning maintains per-tag affinity weights derived from implicit
// user feedback. Weights are recomputed as a deterministic fold over the
// signal log, decayed on a fixed interval, and clamped to a bounded range.
package learning

import (
	"math"
	"slices"
	"time"
)

const (
	// MaxSignals bounds the retained signal log. Oldest entries drop first.
	MaxSignals = 500

	// DecayInterval is how long a decay window lasts before weights are
	// attenuated once.
	DecayInterval = 7 * 24 * time.Hour

	// DecayFactor multiplies every weight when a decay window elapses.
	DecayFactor = 0.9

	// MinWeight and MaxWeight bound every tag weight.
	MinWeight = -8.0
	MaxWeight = 12.0
)

// SignalType identifies the kind of implicit feedback a signal carries.
type SignalType string

const (
	SignalViewed   SignalType = "viewed"
	SignalAccepted SignalType = "accepted"
	SignalAnother  SignalType = "another"
	SignalSkip     SignalType = "skip"
)

// signalDeltas maps each signal type to the weight delta applied to every
// tag on the signal's recipe.
var signalDeltas = map[SignalType]float64{
	SignalViewed:   0,
	SignalAccepted: 2,
	SignalAnother:  -1,
	SignalSkip:     -2,
}

// Signal is a single implicit feedback event tied to a recipe interaction.
type Signal struct {
	Timestamp time.Time  `json:"timestamp"`
	Type      SignalType `json:"type"`
	RecipeID  string     `json:"recipe_id"`
	Tags      []string   `json:"tags"`
	Needs     []string   `json:"needs"`
}

// State holds the learned tag weights together with the decay bookkeeping
// needed to make recomputation idempotent.
type State struct {
	TagWeights  map[string]float64 `json:"tag_weights"`
	DecayAnchor time.Time          `json:"decay_anchor"`
	LastUpdated time.Time          `json:"last_updated"`
}

// NewState returns an empty learning state anchored at now.
func NewState(now time.Time) State {
	return State{
		TagWeights:  map[string]float64{},
		DecayAnchor: now,
		LastUpdated: time.Time{},
	}
}

// TagWeight is a tag paired with its learned weight, used for reporting.
type TagWeight struct {
	Tag    string  `json:"tag"`
	Weight float64 `json:"weight"`
}

// Record appends a signal to the log, dropping the oldest entries once
// the log exceeds MaxSignals. Order is preserved.
func Record(sig Signal, existing []Signal) []Signal {
	signals := append(existing, sig)
	if len(signals) > MaxSignals {
		signals = signals[len(signals)-MaxSignals:]
	}
	return signals
}

// Recompute folds the signal log into a new state. Only signals newer than
// prev.LastUpdated are processed, so replaying the same log is a no-op.
// When a full decay interval has elapsed since the anchor, every existing
// weight is attenuated once and the anchor resets to now.
func Recompute(signals []Signal, prev *State, now time.Time) State {
	next := State{
		TagWeights:  map[string]float64{},
		DecayAnchor: now,
		LastUpdated: now,
	}

	var cutoff time.Time
	if prev != nil {
		cutoff = prev.LastUpdated
		next.DecayAnchor = prev.DecayAnchor
		for tag, w := range prev.TagWeights {
			next.TagWeights[tag] = w
		}
		if now.Sub(prev.DecayAnchor) >= DecayInterval {
			for tag, w := range next.TagWeights {
				next.TagWeights[tag] = clampWeight(w * DecayFactor)
			}
			next.DecayAnchor = now
		}
	}

	for _, sig := range signals {
		if prev != nil && !sig.Timestamp.After(cutoff) {
			continue
		}
		delta := signalDeltas[sig.Type]
		if delta == 0 {
			continue
		}
		for _, tag := range sig.Tags {
			next.TagWeights[tag] = clampWeight(next.TagWeights[tag] + delta)
		}
	}

	return next
}

// TagBoost returns the learned weight for a tag, or 0 when absent.
func TagBoost(tag string, state State) float64 {
	return state.TagWeights[tag]
}

// SummarizeLikes returns up to three tag names with weight above 1.5,
// strongest first. Used to describe the user's tastes in prose.
func SummarizeLikes(state State) []string {
	liked := weightsAbove(state, 1.5)
	if len(liked) > 3 {
		liked = liked[:3]
	}
	names := make([]string, len(liked))
	for i, tw := range liked {
		names[i] = tw.Tag
	}
	return names
}

// TopTags returns tags whose absolute weight is at least 0.5, ordered by
// absolute weight descending, capped at limit.
func TopTags(state State, limit int) []TagWeight {
	var tags []TagWeight
	for tag, w := range state.TagWeights {
		if math.Abs(w) >= 0.5 {
			tags = append(tags, TagWeight{Tag: tag, Weight: w})
		}
	}
	slices.SortFunc(tags, func(a, b TagWeight) int {
		switch {
		case math.Abs(a.Weight) > math.Abs(b.Weight):
			return -1
		case math.Abs(a.Weight) < math.Abs(b.Weight):
			return 1
		default:
			return compareStrings(a.Tag, b.Tag)
		}
	})
	if limit >= 0 && len(tags) > limit {
		tags = tags[:limit]
	}
	return tags
}

// WhyThisReasons returns up to two of the recipe's tags the user has shown
// strong positive affinity for, strongest first.
func WhyThisReasons(recipeTags []string, state State) []string {
	var matched []TagWeight
	for _, tag := range recipeTags {
		if w := state.TagWeights[tag]; w > 1.5 {
			matched = append(matched, TagWeight{Tag: tag, Weight: w})
		}
	}
	slices.SortFunc(matched, func(a, b TagWeight) int {
		switch {
		case a.Weight > b.Weight:
			return -1
		case a.Weight < b.Weight:
			return 1
		default:
			return compareStrings(a.Tag, b.Tag)
		}
	})
	if len(matched) > 2 {
		matched = matched[:2]
	}
	reasons := make([]string, len(matched))
	for i, tw := range matched {
		reasons[i] = tw.Tag
	}
	return reasons
}

// weightsAbove returns tags with weight strictly above the threshold,
// sorted by weight descending with the tag name as a stable tie-break.
func weightsAbove(state State, threshold float64) []TagWeight {
	var tags []TagWeight
	for tag, w := range state.TagWeights {
		if w > threshold {
			tags = append(tags, TagWeight{Tag: tag, Weight: w})
		}
	}
	slices.SortFunc(tags, func(a, b TagWeight) int {
		switch {
		case a.Weight > b.Weight:
			return -1
		case a.Weight < b.Weight:
			return 1
		default:
			return compareStrings(a.Tag, b.Tag)
		}
	})
	return tags
}

func clampWeight(w float64) float64 {
	if w < MinWeight {
		return MinWeight
	}
	if w > MaxWeight {
		return MaxWeight
	}
	return w
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
