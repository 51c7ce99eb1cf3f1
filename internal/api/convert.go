package api

import (
	"math"
	"strconv"
	"time"

	"tokenscan/internal/model"
)

// ParseNumber parses an upstream numeric string. Empty, malformed and
// non-finite input all parse to zero; the upstream is best-effort and
// a bad number must never poison a row.
func ParseNumber(s string) float64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ResolveInitialMcap picks the market cap for a snapshot row from the
// ordered candidate fields: current value first, then initial, then
// the pair-denominated variants. The first strictly-positive finite
// candidate wins; zero if none qualifies.
func ResolveInitialMcap(r ScannerRow) float64 {
	for _, s := range []string{r.CurrentMcap, r.InitialMcap, r.PairMcapUsd, r.PairMcapUsdInitial} {
		if v := ParseNumber(s); v > 0 {
			return v
		}
	}
	return 0
}

// parseAge parses the token creation timestamp. Zero time on failure.
func parseAge(iso string) time.Time {
	if iso == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		t, err = time.Parse("2006-01-02T15:04:05", iso)
		if err != nil {
			return time.Time{}
		}
	}
	return t
}

// exchangeLabel resolves the display label for the venue a pair trades
// on, preferring migration provenance over the raw router address.
func exchangeLabel(r ScannerRow) string {
	if r.MigratedFromVirtualRouter != "" {
		return r.MigratedFromVirtualRouter
	}
	if r.VirtualRouterType != "" {
		return r.VirtualRouterType
	}
	return r.RouterAddress
}

// ToModel converts a raw scanner row to the canonical pair entity plus
// the token's total supply (kept as per-entity metadata, not on the
// entity itself). The result carries snapshot-derived price and mcap;
// merge precedence against streamed values is the store's business.
func (r ScannerRow) ToModel() (model.Pair, float64) {
	chain := model.ChainFromID(r.ChainID)
	id := model.PairID{Chain: chain, PairAddress: r.PairAddress}

	p := model.Pair{
		ID:           id,
		TokenName:    r.Token1Name,
		TokenSymbol:  r.Token1Symbol,
		TokenAddress: r.Token1Address,
		Exchange:     exchangeLabel(r),
		ImageURI:     r.Token1ImageURI,

		PriceUsd:  ParseNumber(r.Price),
		VolumeUsd: ParseNumber(r.Volume),
		Mcap:      ResolveInitialMcap(r),

		PriceChangePcs: model.PriceChanges{
			M5:  ParseNumber(r.Diff5M),
			H1:  ParseNumber(r.Diff1H),
			H6:  ParseNumber(r.Diff6H),
			H24: ParseNumber(r.Diff24H),
		},
		Transactions: model.Transactions{
			Buys:  r.Buys,
			Sells: r.Sells,
		},
		Liquidity: model.Liquidity{
			Current:  ParseNumber(r.Liquidity),
			ChangePc: ParseNumber(r.PercentChangeInLiquidity),
		},
		Audit: model.Audit{
			Mintable:         r.IsMintAuthDisabled,
			Freezable:        r.IsFreezeAuthDisabled,
			Honeypot:         r.HoneyPot,
			ContractVerified: r.ContractVerified,
		},
		TokenCreatedAt: parseAge(r.Age),
	}

	return p, ParseNumber(r.Token1TotalSupplyFormatted)
}
