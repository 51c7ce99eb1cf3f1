// Package subs tracks which pairs hold live subscriptions on the
// streaming channel and computes the set difference against the pairs
// that should be subscribed.
package subs

import (
	"sync"

	"tokenscan/internal/model"
)

// Tracker maintains the current subscription set. The invariant it
// preserves: after every Diff/Commit cycle the tracked set equals the
// union of visible page identifiers, with at most one subscription per
// pair.
type Tracker struct {
	mu      sync.Mutex
	tracked map[model.PairID]struct{}
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{tracked: make(map[model.PairID]struct{})}
}

// Diff reconciles the tracked set against next. It returns the pairs
// to subscribe (in next but not tracked) and unsubscribe (tracked but
// not in next), and commits next as the new tracked set. Pairs present
// in both sets appear in neither list.
func (t *Tracker) Diff(next map[model.PairID]struct{}) (subscribe, unsubscribe []model.PairID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id := range next {
		if _, ok := t.tracked[id]; !ok {
			subscribe = append(subscribe, id)
		}
	}
	for id := range t.tracked {
		if _, ok := next[id]; !ok {
			unsubscribe = append(unsubscribe, id)
		}
	}

	tracked := make(map[model.PairID]struct{}, len(next))
	for id := range next {
		tracked[id] = struct{}{}
	}
	t.tracked = tracked

	return subscribe, unsubscribe
}

// Tracked returns a copy of the current subscription set.
func (t *Tracker) Tracked() map[model.PairID]struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[model.PairID]struct{}, len(t.tracked))
	for id := range t.tracked {
		out[id] = struct{}{}
	}
	return out
}

// Clear empties the tracked set and returns the pairs that were
// subscribed, so the caller can tear them down on shutdown.
func (t *Tracker) Clear() []model.PairID {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]model.PairID, 0, len(t.tracked))
	for id := range t.tracked {
		out = append(out, id)
	}
	t.tracked = make(map[model.PairID]struct{})
	return out
}
