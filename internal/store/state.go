package store

import (
	"time"

	"tokenscan/internal/model"
)

// PageState is the ordered identifier list of one fetched page.
type PageState struct {
	Page    int
	PairIDs []model.PairID
}

// PairMeta is derived per-entity state kept off the entity record.
type PairMeta struct {
	// TotalSupply comes from snapshots and is used to recompute mcap
	// from streamed prices. Zero means not yet known.
	TotalSupply float64

	LastScannerSeenAt time.Time

	// History is the bounded sparkline ring, oldest first.
	History []model.PricePoint

	Effects model.CellEffects
}

// State is one immutable snapshot of the store. Callers must not
// mutate any map or slice reached through it.
type State struct {
	Entities map[model.PairID]model.Pair
	Meta     map[model.PairID]PairMeta
	Pages    map[model.View][]PageState
}

func newState() *State {
	return &State{
		Entities: make(map[model.PairID]model.Pair),
		Meta:     make(map[model.PairID]PairMeta),
		Pages:    make(map[model.View][]PageState),
	}
}

// clone shallow-copies the state so a writer can replace records
// without disturbing readers of the previous snapshot.
func (s *State) clone() *State {
	next := &State{
		Entities: make(map[model.PairID]model.Pair, len(s.Entities)),
		Meta:     make(map[model.PairID]PairMeta, len(s.Meta)),
		Pages:    make(map[model.View][]PageState, len(s.Pages)),
	}
	for id, e := range s.Entities {
		next.Entities[id] = e
	}
	for id, m := range s.Meta {
		next.Meta[id] = m
	}
	for v, pages := range s.Pages {
		cp := make([]PageState, len(pages))
		copy(cp, pages)
		next.Pages[v] = cp
	}
	return next
}

// VisibleIDs returns the union of identifiers across all pages of all
// views. This is the set the subscription tracker reconciles against.
func (s *State) VisibleIDs() map[model.PairID]struct{} {
	ids := make(map[model.PairID]struct{})
	for _, pages := range s.Pages {
		for _, pg := range pages {
			for _, id := range pg.PairIDs {
				ids[id] = struct{}{}
			}
		}
	}
	return ids
}
