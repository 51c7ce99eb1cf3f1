package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tokenscan/internal/model"
	"tokenscan/internal/stream"
)

func newTestStore() *Store {
	return New(DefaultConfig(), zap.NewNop())
}

func testPair(addr string) model.Pair {
	return model.Pair{
		ID:           model.PairID{Chain: model.ChainETH, PairAddress: addr},
		TokenName:    "Token " + addr,
		TokenSymbol:  "TKN",
		TokenAddress: "0xTOKEN" + addr,
		PriceUsd:     1.5,
		VolumeUsd:    1000,
		Mcap:         5000,
	}
}

func TestUpsertCreatesEntityAndPage(t *testing.T) {
	s := newTestStore()
	p := testPair("A")

	s.UpsertFromScanner(model.ViewTrending, 1, []SnapshotItem{{Pair: p, TotalSupply: 1_000_000}})

	st := s.Snapshot()
	got, ok := st.Entities[p.ID]
	require.True(t, ok)
	assert.Equal(t, 1.5, got.PriceUsd)
	assert.Equal(t, 1000.0, got.VolumeUsd)
	assert.True(t, got.LastPriceUpdateAt.IsZero())

	require.Len(t, st.Pages[model.ViewTrending], 1)
	assert.Equal(t, []model.PairID{p.ID}, st.Pages[model.ViewTrending][0].PairIDs)
	assert.Equal(t, 1_000_000.0, st.Meta[p.ID].TotalSupply)
}

func TestSnapshotDoesNotOverwriteStreamedPrice(t *testing.T) {
	s := newTestStore()
	p := testPair("A")

	s.UpsertFromScanner(model.ViewTrending, 1, []SnapshotItem{{Pair: p, TotalSupply: 1_000_000}})
	s.ApplyTickBatch([]stream.TickUpdate{{ID: p.ID, NewPrice: 1.6}})

	// Re-merge the stale snapshot row.
	s.UpsertFromScanner(model.ViewTrending, 1, []SnapshotItem{{Pair: p, TotalSupply: 1_000_000}})

	got := s.Snapshot().Entities[p.ID]
	assert.Equal(t, 1.6, got.PriceUsd)
	assert.Equal(t, 1_600_000.0, got.Mcap)
	assert.False(t, got.LastPriceUpdateAt.IsZero())
}

func TestSnapshotOverwritesUntickedPrice(t *testing.T) {
	s := newTestStore()
	p := testPair("A")

	s.UpsertFromScanner(model.ViewTrending, 1, []SnapshotItem{{Pair: p}})

	p2 := p
	p2.PriceUsd = 2.5
	s.UpsertFromScanner(model.ViewTrending, 1, []SnapshotItem{{Pair: p2}})

	assert.Equal(t, 2.5, s.Snapshot().Entities[p.ID].PriceUsd)
}

func TestTickOnUnknownPairIsReferentialNoop(t *testing.T) {
	s := newTestStore()
	s.UpsertFromScanner(model.ViewTrending, 1, []SnapshotItem{{Pair: testPair("A")}})

	before := s.Snapshot()
	s.ApplyTickBatch([]stream.TickUpdate{{
		ID:       model.PairID{Chain: model.ChainSOL, PairAddress: "UNKNOWN"},
		NewPrice: 9,
	}})

	assert.Same(t, before, s.Snapshot())
}

func TestTickRecomputesMcapFromSupply(t *testing.T) {
	s := newTestStore()
	p := testPair("A")
	p.Mcap = 0

	s.UpsertFromScanner(model.ViewTrending, 1, []SnapshotItem{{Pair: p, TotalSupply: 1_000_000}})
	s.ApplyTickBatch([]stream.TickUpdate{{ID: p.ID, NewPrice: 0.002}})

	assert.Equal(t, 2000.0, s.Snapshot().Entities[p.ID].Mcap)
}

func TestTickWithoutSupplyKeepsMcap(t *testing.T) {
	s := newTestStore()
	p := testPair("A")

	s.UpsertFromScanner(model.ViewTrending, 1, []SnapshotItem{{Pair: p}})
	s.ApplyTickBatch([]stream.TickUpdate{{ID: p.ID, NewPrice: 2}})

	got := s.Snapshot().Entities[p.ID]
	assert.Equal(t, 2.0, got.PriceUsd)
	assert.Equal(t, 5000.0, got.Mcap)
}

func TestTickEffectDirection(t *testing.T) {
	s := newTestStore()
	p := testPair("A")
	s.UpsertFromScanner(model.ViewTrending, 1, []SnapshotItem{{Pair: p, TotalSupply: 1_000_000}})

	s.ApplyTickBatch([]stream.TickUpdate{{ID: p.ID, NewPrice: 1.6}})
	assert.Equal(t, model.EffectUp, s.Snapshot().Meta[p.ID].Effects.Price.Dir)
	assert.Equal(t, model.EffectUp, s.Snapshot().Meta[p.ID].Effects.Mcap.Dir)

	s.ApplyTickBatch([]stream.TickUpdate{{ID: p.ID, NewPrice: 1.2}})
	assert.Equal(t, model.EffectDown, s.Snapshot().Meta[p.ID].Effects.Price.Dir)

	// Exact equality counts as up.
	s.ApplyTickBatch([]stream.TickUpdate{{ID: p.ID, NewPrice: 1.2}})
	assert.Equal(t, model.EffectUp, s.Snapshot().Meta[p.ID].Effects.Price.Dir)
}

func TestTickSwapVolumeAndSides(t *testing.T) {
	s := newTestStore()
	p := testPair("A")
	s.UpsertFromScanner(model.ViewTrending, 1, []SnapshotItem{{Pair: p}})

	// Token-in differs from the entity's token: a buy.
	s.ApplyTickBatch([]stream.TickUpdate{{
		ID:       p.ID,
		NewPrice: 2,
		Swap: &stream.Swap{
			PriceToken1Usd: "2",
			AmountToken1:   "-50",
			TokenInAddress: "0xQUOTE",
		},
	}})

	got := s.Snapshot().Entities[p.ID]
	assert.Equal(t, 1100.0, got.VolumeUsd)
	assert.Equal(t, 1, got.Transactions.Buys)
	assert.Equal(t, 0, got.Transactions.Sells)

	// Token-in matches: a sell.
	s.ApplyTickBatch([]stream.TickUpdate{{
		ID:       p.ID,
		NewPrice: 2,
		Swap: &stream.Swap{
			PriceToken1Usd: "2",
			AmountToken1:   "10",
			TokenInAddress: p.TokenAddress,
		},
	}})

	got = s.Snapshot().Entities[p.ID]
	assert.Equal(t, 1120.0, got.VolumeUsd)
	assert.Equal(t, 1, got.Transactions.Sells)
}

func TestTickBatchAppliesRepeatsForSamePair(t *testing.T) {
	s := newTestStore()
	p := testPair("A")
	s.UpsertFromScanner(model.ViewTrending, 1, []SnapshotItem{{Pair: p}})

	// Two trades for one pair inside a single flush window: both swaps
	// count toward volume and transactions, the last price wins.
	s.ApplyTickBatch([]stream.TickUpdate{
		{
			ID:       p.ID,
			NewPrice: 2,
			Swap: &stream.Swap{
				PriceToken1Usd: "2",
				AmountToken1:   "50",
				TokenInAddress: "0xQUOTE",
			},
		},
		{
			ID:       p.ID,
			NewPrice: 4,
			Swap: &stream.Swap{
				PriceToken1Usd: "4",
				AmountToken1:   "25",
				TokenInAddress: "0xQUOTE",
			},
		},
	})

	got := s.Snapshot().Entities[p.ID]
	assert.Equal(t, 4.0, got.PriceUsd)
	assert.Equal(t, 1200.0, got.VolumeUsd)
	assert.Equal(t, 2, got.Transactions.Buys)
}

func TestHistoryRingIsTrailingWindow(t *testing.T) {
	s := New(Config{HistoryLimit: 5}, zap.NewNop())
	p := testPair("A")
	s.UpsertFromScanner(model.ViewTrending, 1, []SnapshotItem{{Pair: p}})

	for i := 1; i <= 8; i++ {
		s.ApplyTickBatch([]stream.TickUpdate{{ID: p.ID, NewPrice: float64(i)}})
	}

	history := s.Snapshot().Meta[p.ID].History
	require.Len(t, history, 5)
	for i, want := range []float64{4, 5, 6, 7, 8} {
		assert.Equal(t, want, history[i].Price)
	}
}

func TestPairStatsOverlay(t *testing.T) {
	s := newTestStore()
	p := testPair("A")
	s.UpsertFromScanner(model.ViewTrending, 1, []SnapshotItem{{Pair: p}})

	twitter := "https://x.com/token"
	dexPaid := true
	s.ApplyPairStatsBatch([]stream.StatsUpdate{{
		ID: p.ID,
		Data: stream.PairStatsData{
			Pair: stream.PairStatsPair{
				MintAuthorityRenounced:   true,
				FreezeAuthorityRenounced: false,
				Token1IsHoneypot:         false,
				IsVerified:               true,
				LinkTwitter:              &twitter,
				DexPaid:                  &dexPaid,
				TotalLockedRatio:         "0.75",
			},
			MigrationProgress: "42.5",
		},
	}})

	got := s.Snapshot().Entities[p.ID]
	assert.True(t, got.Audit.Mintable)
	assert.False(t, got.Audit.Freezable)
	assert.True(t, got.Audit.Honeypot, "not a honeypot means safe")
	assert.True(t, got.Audit.ContractVerified)
	assert.Equal(t, twitter, got.Social.Twitter)
	assert.True(t, got.DexPaid)
	assert.Equal(t, 42.5, got.MigrationPc)
	assert.Equal(t, 0.75, got.LiquidityLockedRatio)

	// A later update without links keeps the ones already set.
	s.ApplyPairStatsBatch([]stream.StatsUpdate{{
		ID: p.ID,
		Data: stream.PairStatsData{
			Pair: stream.PairStatsPair{MintAuthorityRenounced: true},
		},
	}})
	assert.Equal(t, twitter, s.Snapshot().Entities[p.ID].Social.Twitter)
	assert.True(t, s.Snapshot().Entities[p.ID].DexPaid)
}

func TestPairStatsUnknownPairIsReferentialNoop(t *testing.T) {
	s := newTestStore()
	before := s.Snapshot()

	s.ApplyPairStatsBatch([]stream.StatsUpdate{{
		ID: model.PairID{Chain: model.ChainETH, PairAddress: "0xNONE"},
	}})

	assert.Same(t, before, s.Snapshot())
}

func TestPageReplaceInPlace(t *testing.T) {
	s := newTestStore()
	a, b, c := testPair("A"), testPair("B"), testPair("C")

	s.UpsertFromScanner(model.ViewTrending, 1, []SnapshotItem{{Pair: a}})
	s.UpsertFromScanner(model.ViewTrending, 2, []SnapshotItem{{Pair: b}})
	s.UpsertFromScanner(model.ViewTrending, 1, []SnapshotItem{{Pair: c}})

	pages := s.Snapshot().Pages[model.ViewTrending]
	require.Len(t, pages, 2)
	assert.Equal(t, []model.PairID{c.ID}, pages[0].PairIDs)
	assert.Equal(t, []model.PairID{b.ID}, pages[1].PairIDs)
}

func TestResetViewIsolated(t *testing.T) {
	s := newTestStore()
	a, b := testPair("A"), testPair("B")

	s.UpsertFromScanner(model.ViewTrending, 1, []SnapshotItem{{Pair: a}})
	s.UpsertFromScanner(model.ViewFresh, 1, []SnapshotItem{{Pair: b}})

	s.ResetView(model.ViewTrending)

	st := s.Snapshot()
	assert.Empty(t, st.Pages[model.ViewTrending])
	require.Len(t, st.Pages[model.ViewFresh], 1)

	// Entities survive a reset; only the page index is dropped.
	assert.Contains(t, st.Entities, a.ID)
	assert.Contains(t, st.Entities, b.ID)
}

func TestViewRowsExpiresEffects(t *testing.T) {
	s := newTestStore()
	p := testPair("A")
	s.UpsertFromScanner(model.ViewTrending, 1, []SnapshotItem{{Pair: p}})

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	s.ApplyTickBatch([]stream.TickUpdate{{ID: p.ID, NewPrice: 2}})

	s.now = func() time.Time { return base.Add(time.Second) }
	rows := s.ViewRows(model.ViewTrending)
	require.Len(t, rows, 1)
	assert.Equal(t, model.EffectUp, rows[0].Effects.Price.Dir)

	s.now = func() time.Time { return base.Add(2 * time.Second) }
	rows = s.ViewRows(model.ViewTrending)
	require.Len(t, rows, 1)
	assert.Zero(t, rows[0].Effects.Price)
	assert.Zero(t, rows[0].Effects.Mcap)
}

func TestVisibleIDsUnion(t *testing.T) {
	s := newTestStore()
	a, b, c := testPair("A"), testPair("B"), testPair("C")

	s.UpsertFromScanner(model.ViewTrending, 1, []SnapshotItem{{Pair: a}, {Pair: b}})
	s.UpsertFromScanner(model.ViewFresh, 1, []SnapshotItem{{Pair: b}, {Pair: c}})

	ids := s.Snapshot().VisibleIDs()
	assert.Len(t, ids, 3)
	assert.Contains(t, ids, a.ID)
	assert.Contains(t, ids, b.ID)
	assert.Contains(t, ids, c.ID)
}
