package store

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"tokenscan/internal/api"
	"tokenscan/internal/model"
	"tokenscan/internal/stream"
)

// Config holds the tunables of the store.
type Config struct {
	// HistoryLimit caps the per-pair sparkline ring.
	HistoryLimit int

	// EffectTTL is how long a cell flash stays active after it is set.
	EffectTTL time.Duration
}

// DefaultConfig returns the standard limits.
func DefaultConfig() Config {
	return Config{
		HistoryLimit: 60,
		EffectTTL:    1200 * time.Millisecond,
	}
}

// SnapshotItem is one converted snapshot row handed to the merger.
type SnapshotItem struct {
	Pair        model.Pair
	TotalSupply float64
}

// Store is the owned state container for pair entities. It implements
// stream.Sink so the batcher can flush directly into it.
type Store struct {
	cfg    Config
	logger *zap.Logger
	now    func() time.Time

	mu    sync.Mutex
	state atomic.Pointer[State]
}

// New creates an empty store.
func New(cfg Config, logger *zap.Logger) *Store {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = DefaultConfig().HistoryLimit
	}
	if cfg.EffectTTL <= 0 {
		cfg.EffectTTL = DefaultConfig().EffectTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Store{cfg: cfg, logger: logger, now: time.Now}
	s.state.Store(newState())
	return s
}

// Snapshot returns the current immutable state.
func (s *Store) Snapshot() *State {
	return s.state.Load()
}

// UpsertFromScanner merges one snapshot page into the store.
//
// Merge policy: a pair that already carries a streamed non-zero price
// keeps it, along with its mcap when one was already computed; the
// snapshot supplies both otherwise. Every other field is overwritten
// from the snapshot. The page index for (view, page) is replaced in
// place if present, appended otherwise.
func (s *Store) UpsertFromScanner(view model.View, page int, items []SnapshotItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	next := s.state.Load().clone()

	ids := make([]model.PairID, 0, len(items))
	for _, item := range items {
		incoming := item.Pair
		id := incoming.ID
		ids = append(ids, id)

		if existing, ok := next.Entities[id]; ok {
			if existing.PriceUsd != 0 && !existing.LastPriceUpdateAt.IsZero() {
				incoming.PriceUsd = existing.PriceUsd
				if existing.Mcap != 0 {
					incoming.Mcap = existing.Mcap
				}
			}
			if incoming.ImageURI == "" {
				incoming.ImageURI = existing.ImageURI
			}
			incoming.MigrationPc = existing.MigrationPc
			incoming.Social = existing.Social
			incoming.DexPaid = existing.DexPaid
			incoming.LiquidityLockedRatio = existing.LiquidityLockedRatio
			incoming.LastPriceUpdateAt = existing.LastPriceUpdateAt
		}
		next.Entities[id] = incoming

		meta := next.Meta[id]
		if item.TotalSupply > 0 {
			meta.TotalSupply = item.TotalSupply
		}
		meta.LastScannerSeenAt = now
		next.Meta[id] = meta
	}

	replacePage(next, view, page, ids)
	s.state.Store(next)

	s.logger.Debug("snapshot page merged",
		zap.String("view", string(view)),
		zap.Int("page", page),
		zap.Int("pairs", len(items)))
}

func replacePage(st *State, view model.View, page int, ids []model.PairID) {
	pages := st.Pages[view]
	for i := range pages {
		if pages[i].Page == page {
			pages[i] = PageState{Page: page, PairIDs: ids}
			st.Pages[view] = pages
			return
		}
	}
	st.Pages[view] = append(pages, PageState{Page: page, PairIDs: ids})
}

// ApplyTickBatch folds a drained tick batch into the store. Unknown
// identifiers are skipped; if the whole batch applies nothing the
// published state pointer does not change.
func (s *Store) ApplyTickBatch(ticks []stream.TickUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cur := s.state.Load()
	next := cur.clone()
	applied := false

	for _, u := range ticks {
		entity, ok := next.Entities[u.ID]
		if !ok {
			continue
		}
		if math.IsNaN(u.NewPrice) || math.IsInf(u.NewPrice, 0) {
			continue
		}

		meta := next.Meta[u.ID]

		dir := model.EffectDown
		if u.NewPrice >= entity.PriceUsd {
			dir = model.EffectUp
		}

		entity.PriceUsd = u.NewPrice
		if meta.TotalSupply > 0 {
			if mcap := meta.TotalSupply * u.NewPrice; !math.IsNaN(mcap) && !math.IsInf(mcap, 0) {
				entity.Mcap = mcap
			}
		}

		if u.Swap != nil {
			if delta := math.Abs(api.ParseNumber(u.Swap.AmountToken1)) * api.ParseNumber(u.Swap.PriceToken1Usd); delta > 0 {
				entity.VolumeUsd += delta
			}
			if u.Swap.TokenInAddress != entity.TokenAddress {
				entity.Transactions.Buys++
			} else {
				entity.Transactions.Sells++
			}
		}

		entity.LastPriceUpdateAt = now
		meta.History = appendHistory(meta.History, model.PricePoint{At: now, Price: u.NewPrice}, s.cfg.HistoryLimit)
		meta.Effects.Price = model.CellEffect{Dir: dir, At: now}
		meta.Effects.Mcap = model.CellEffect{Dir: dir, At: now}

		next.Entities[u.ID] = entity
		next.Meta[u.ID] = meta
		applied = true
	}

	if applied {
		s.state.Store(next)
	}
}

// appendHistory appends p to a fresh backing slice, trimming from the
// front once the ring exceeds limit. Never aliases the input slice.
func appendHistory(history []model.PricePoint, p model.PricePoint, limit int) []model.PricePoint {
	n := len(history) + 1
	start := 0
	if n > limit {
		start = n - limit
		n = limit
	}
	out := make([]model.PricePoint, 0, n)
	out = append(out, history[start:]...)
	return append(out, p)
}

// ApplyPairStatsBatch folds a drained pair-stats batch into the store.
// Absent optional fields keep the entity's current values.
func (s *Store) ApplyPairStatsBatch(stats []stream.StatsUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.state.Load()
	next := cur.clone()
	applied := false

	for _, u := range stats {
		entity, ok := next.Entities[u.ID]
		if !ok {
			continue
		}

		p := u.Data.Pair
		entity.Audit = model.Audit{
			Mintable:         p.MintAuthorityRenounced,
			Freezable:        p.FreezeAuthorityRenounced,
			Honeypot:         !p.Token1IsHoneypot,
			ContractVerified: p.IsVerified,
		}
		if p.LinkDiscord != nil {
			entity.Social.Discord = *p.LinkDiscord
		}
		if p.LinkTelegram != nil {
			entity.Social.Telegram = *p.LinkTelegram
		}
		if p.LinkTwitter != nil {
			entity.Social.Twitter = *p.LinkTwitter
		}
		if p.LinkWebsite != nil {
			entity.Social.Website = *p.LinkWebsite
		}
		if p.DexPaid != nil {
			entity.DexPaid = *p.DexPaid
		}
		entity.MigrationPc = api.ParseNumber(u.Data.MigrationProgress)
		entity.LiquidityLockedRatio = api.ParseNumber(p.TotalLockedRatio)

		next.Entities[u.ID] = entity
		applied = true
	}

	if applied {
		s.state.Store(next)
	}
}

// ResetView drops every page of one view, used when its filters
// change. Entities and metadata stay: identity survives a re-query and
// streamed freshness is not thrown away.
func (s *Store) ResetView(view model.View) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.state.Load()
	if len(cur.Pages[view]) == 0 {
		return
	}

	next := cur.clone()
	delete(next.Pages, view)
	s.state.Store(next)

	s.logger.Debug("view reset", zap.String("view", string(view)))
}

// Row is one renderable table row: the entity plus its derived
// display state, with expired effects already filtered out.
type Row struct {
	Pair    model.Pair
	History []model.PricePoint
	Effects model.CellEffects
}

// ViewRows flattens a view's pages, in page order, into renderable
// rows. Effects are expired by wall-clock comparison here, at read
// time; nothing clears them in the store.
func (s *Store) ViewRows(view model.View) []Row {
	st := s.state.Load()
	now := s.now()

	pages := make([]PageState, len(st.Pages[view]))
	copy(pages, st.Pages[view])
	sort.Slice(pages, func(i, j int) bool { return pages[i].Page < pages[j].Page })

	var rows []Row
	seen := make(map[model.PairID]struct{})
	for _, pg := range pages {
		for _, id := range pg.PairIDs {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}

			entity, ok := st.Entities[id]
			if !ok {
				continue
			}
			meta := st.Meta[id]

			var effects model.CellEffects
			if meta.Effects.Price.ActiveAt(now, s.cfg.EffectTTL) {
				effects.Price = meta.Effects.Price
			}
			if meta.Effects.Mcap.ActiveAt(now, s.cfg.EffectTTL) {
				effects.Mcap = meta.Effects.Mcap
			}

			rows = append(rows, Row{Pair: entity, History: meta.History, Effects: effects})
		}
	}
	return rows
}
