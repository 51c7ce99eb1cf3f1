package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tokenscan/internal/model"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1.5", 1.5},
		{"0", 0},
		{"-3.25", -3.25},
		{"", 0},
		{"garbage", 0},
		{"NaN", 0},
		{"Inf", 0},
		{"1e3", 1000},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseNumber(tt.in), "input %q", tt.in)
	}
}

func TestResolveInitialMcap(t *testing.T) {
	tests := []struct {
		name string
		row  ScannerRow
		want float64
	}{
		{
			name: "current wins",
			row:  ScannerRow{CurrentMcap: "100", InitialMcap: "50", PairMcapUsd: "25"},
			want: 100,
		},
		{
			name: "falls through zero current",
			row:  ScannerRow{CurrentMcap: "0", InitialMcap: "50"},
			want: 50,
		},
		{
			name: "falls through junk",
			row:  ScannerRow{CurrentMcap: "n/a", InitialMcap: "", PairMcapUsd: "12.5"},
			want: 12.5,
		},
		{
			name: "negative candidates rejected",
			row:  ScannerRow{CurrentMcap: "-5", PairMcapUsdInitial: "7"},
			want: 7,
		},
		{
			name: "no candidate",
			row:  ScannerRow{},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveInitialMcap(tt.row))
		})
	}
}

func TestScannerRowToModel(t *testing.T) {
	row := ScannerRow{
		ChainID:       8453,
		PairAddress:   "0xPAIR",
		Token1Name:    "Test Token",
		Token1Symbol:  "TST",
		Token1Address: "0xTOKEN",
		Price:         "1.5",
		Volume:        "1000",
		CurrentMcap:   "2000000",
		Diff5M:        "0.5",
		Diff1H:        "-1.25",
		Diff6H:        "3",
		Diff24H:       "10",
		Buys:          7,
		Sells:         3,
		Age:           "2024-05-01T12:00:00Z",
		Liquidity:     "50000",

		PercentChangeInLiquidity:   "2.5",
		IsMintAuthDisabled:         true,
		ContractVerified:           true,
		Token1TotalSupplyFormatted: "1000000",
		RouterAddress:              "0xROUTER",
	}

	p, supply := row.ToModel()

	assert.Equal(t, model.PairID{Chain: model.ChainBASE, PairAddress: "0xPAIR"}, p.ID)
	assert.Equal(t, "Test Token", p.TokenName)
	assert.Equal(t, "TST", p.TokenSymbol)
	assert.Equal(t, "0xTOKEN", p.TokenAddress)
	assert.Equal(t, "0xROUTER", p.Exchange)
	assert.Equal(t, 1.5, p.PriceUsd)
	assert.Equal(t, 1000.0, p.VolumeUsd)
	assert.Equal(t, 2000000.0, p.Mcap)
	assert.Equal(t, model.PriceChanges{M5: 0.5, H1: -1.25, H6: 3, H24: 10}, p.PriceChangePcs)
	assert.Equal(t, model.Transactions{Buys: 7, Sells: 3}, p.Transactions)
	assert.Equal(t, model.Liquidity{Current: 50000, ChangePc: 2.5}, p.Liquidity)
	assert.True(t, p.Audit.Mintable)
	assert.False(t, p.Audit.Freezable)
	assert.True(t, p.Audit.ContractVerified)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), p.TokenCreatedAt)
	assert.Equal(t, 1000000.0, supply)
	assert.True(t, p.LastPriceUpdateAt.IsZero())
}

func TestExchangeLabelFallback(t *testing.T) {
	assert.Equal(t, "pumpfun", exchangeLabel(ScannerRow{
		MigratedFromVirtualRouter: "pumpfun",
		VirtualRouterType:         "virtual",
		RouterAddress:             "0xR",
	}))
	assert.Equal(t, "virtual", exchangeLabel(ScannerRow{
		VirtualRouterType: "virtual",
		RouterAddress:     "0xR",
	}))
	assert.Equal(t, "0xR", exchangeLabel(ScannerRow{RouterAddress: "0xR"}))
}

func TestScannerParamsView(t *testing.T) {
	v, ok := ScannerParams{RankBy: RankByVolume}.View()
	assert.True(t, ok)
	assert.Equal(t, model.ViewTrending, v)

	v, ok = ScannerParams{RankBy: RankByAge}.View()
	assert.True(t, ok)
	assert.Equal(t, model.ViewFresh, v)

	_, ok = ScannerParams{RankBy: "liquidity"}.View()
	assert.False(t, ok)
}
