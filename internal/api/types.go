package api

import "tokenscan/internal/model"

// RankBy selects the ranking column for a scanner query.
type RankBy string

const (
	RankByVolume RankBy = "volume"
	RankByAge    RankBy = "age"
)

// OrderBy selects the sort direction for a scanner query.
type OrderBy string

const (
	OrderAsc  OrderBy = "asc"
	OrderDesc OrderBy = "desc"
)

// ScannerParams are the query parameters for GET /scanner. The same
// shape is carried verbatim in scanner-filter subscriptions on the
// streaming channel, so json tags follow the upstream field names.
type ScannerParams struct {
	Chain     string  `json:"chain,omitempty"`
	RankBy    RankBy  `json:"rankBy,omitempty"`
	OrderBy   OrderBy `json:"orderBy,omitempty"`
	IsNotHP   bool    `json:"isNotHP,omitempty"`
	MinVol24H float64 `json:"minVol24H,omitempty"`
	MinMcap   float64 `json:"minMcap,omitempty"`
	MaxAge    int64   `json:"maxAge,omitempty"` // seconds
	Page      int     `json:"page,omitempty"`
}

// View maps the ranking column to the scanner view it feeds:
// volume feeds trending, age feeds fresh. Any other ranking has no
// view and is reported as such.
func (p ScannerParams) View() (model.View, bool) {
	switch p.RankBy {
	case RankByVolume:
		return model.ViewTrending, true
	case RankByAge:
		return model.ViewFresh, true
	default:
		return "", false
	}
}

// ScannerResponse is the GET /scanner response body.
type ScannerResponse struct {
	Pairs     []ScannerRow `json:"pairs"`
	TotalRows int          `json:"totalRows"`
}

// ScannerRow is one raw result row as the upstream reports it.
// Numeric fields arrive as strings and are parsed tolerantly during
// conversion (junk parses to zero, never to an error).
type ScannerRow struct {
	ChainID     int64  `json:"chainId"`
	PairAddress string `json:"pairAddress"`

	Token1Name    string `json:"token1Name"`
	Token1Symbol  string `json:"token1Symbol"`
	Token1Address string `json:"token1Address"`

	Price  string `json:"price"`
	Volume string `json:"volume"`

	CurrentMcap        string `json:"currentMcap"`
	InitialMcap        string `json:"initialMcap"`
	PairMcapUsd        string `json:"pairMcapUsd"`
	PairMcapUsdInitial string `json:"pairMcapUsdInitial"`

	Diff5M  string `json:"diff5M"`
	Diff1H  string `json:"diff1H"`
	Diff6H  string `json:"diff6H"`
	Diff24H string `json:"diff24H"`

	Buys  int `json:"buys"`
	Sells int `json:"sells"`

	Age                      string `json:"age"` // ISO 8601 token creation time
	Liquidity                string `json:"liquidity"`
	PercentChangeInLiquidity string `json:"percentChangeInLiquidity"`

	IsMintAuthDisabled   bool `json:"isMintAuthDisabled"`
	IsFreezeAuthDisabled bool `json:"isFreezeAuthDisabled"`
	HoneyPot             bool `json:"honeyPot"`
	ContractVerified     bool `json:"contractVerified"`

	Token1ImageURI             string `json:"token1ImageUri"`
	Token1TotalSupplyFormatted string `json:"token1TotalSupplyFormatted"`

	MigratedFromVirtualRouter string `json:"migratedFromVirtualRouter"`
	VirtualRouterType         string `json:"virtualRouterType"`
	RouterAddress             string `json:"routerAddress"`
}
