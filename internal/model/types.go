package model

import "time"

// -----------------------------------------------------------------------------
// Identity
// -----------------------------------------------------------------------------

// View identifies one of the two ranking modes of the scanner table.
type View string

const (
	// ViewTrending ranks pairs by traded volume.
	ViewTrending View = "trending"

	// ViewFresh ranks pairs by token age.
	ViewFresh View = "fresh"
)

// Valid reports whether v is a known view.
func (v View) Valid() bool {
	return v == ViewTrending || v == ViewFresh
}

// PairID is the composite key joining snapshot and streaming data:
// chain plus pair contract address. It is immutable once assigned and
// never reused for a different underlying pair.
type PairID struct {
	Chain       Chain
	PairAddress string
}

// String renders the identifier in "CHAIN:address" form.
func (id PairID) String() string {
	return string(id.Chain) + ":" + id.PairAddress
}

// -----------------------------------------------------------------------------
// Canonical entity
// -----------------------------------------------------------------------------

// PriceChanges holds relative price-change percentages over the four
// fixed windows the upstream reports.
type PriceChanges struct {
	M5  float64
	H1  float64
	H6  float64
	H24 float64
}

// Transactions counts buys and sells observed for a pair. Counters are
// monotonically non-decreasing within a session.
type Transactions struct {
	Buys  int
	Sells int
}

// Liquidity holds the current liquidity value and its change percent.
type Liquidity struct {
	Current  float64
	ChangePc float64
}

// Audit is the safety flag set reported for a pair.
type Audit struct {
	Mintable         bool
	Freezable        bool
	Honeypot         bool
	ContractVerified bool
}

// Social holds optional community links pushed by pair-stats updates.
// Empty string means the link was never reported.
type Social struct {
	Discord  string
	Telegram string
	Twitter  string
	Website  string
}

// Pair is the canonical entity for one tradable pair. One record
// exists per PairID; records are replaced whole on every mutation so
// readers never see a partially updated entity.
//
// Authority split: streaming data owns PriceUsd (and the Mcap derived
// from it) once the first tick has been applied; snapshot data owns
// everything else unless streaming has independently updated it.
type Pair struct {
	ID           PairID
	TokenName    string
	TokenSymbol  string
	TokenAddress string
	Exchange     string
	ImageURI     string

	PriceUsd  float64
	VolumeUsd float64
	Mcap      float64

	PriceChangePcs PriceChanges
	Transactions   Transactions
	Liquidity      Liquidity
	Audit          Audit

	TokenCreatedAt time.Time

	// Populated by pair-stats streaming updates only.
	MigrationPc          float64
	Social               Social
	DexPaid              bool
	LiquidityLockedRatio float64

	// Zero until the first tick is applied.
	LastPriceUpdateAt time.Time
}

// -----------------------------------------------------------------------------
// Derived display state
// -----------------------------------------------------------------------------

// EffectDirection marks which way a flashed cell moved.
type EffectDirection string

const (
	EffectUp   EffectDirection = "up"
	EffectDown EffectDirection = "down"
)

// CellEffect is a transient highlight marker for a just-changed numeric
// field. It expires by age comparison at read time; nothing clears it.
type CellEffect struct {
	Dir EffectDirection
	At  time.Time
}

// ActiveAt reports whether the effect should still render at now given
// the configured time-to-live. A zero effect was never set.
func (e CellEffect) ActiveAt(now time.Time, ttl time.Duration) bool {
	return !e.At.IsZero() && now.Sub(e.At) <= ttl
}

// CellEffects groups the per-field flash markers kept for a pair.
type CellEffects struct {
	Price CellEffect
	Mcap  CellEffect
}

// PricePoint is one sample in a pair's bounded sparkline history.
type PricePoint struct {
	At    time.Time
	Price float64
}
