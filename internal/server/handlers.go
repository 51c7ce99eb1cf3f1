package server

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"tokenscan/internal/connection"
	"tokenscan/internal/model"
	"tokenscan/internal/store"
)

type handlers struct {
	store  *store.Store
	conn   StateReporter
	logger *zap.Logger
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ready reports 503 until the streaming connection is open, so a
// rolling deploy does not route traffic to an instance serving a
// cold, never-updated dataset.
func (h *handlers) ready(w http.ResponseWriter, _ *http.Request) {
	state := h.conn.State()
	code := http.StatusOK
	if state != connection.StateOpen {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]string{"connection": string(state)})
}

// rowDTO is the wire shape of one scanner table row.
type rowDTO struct {
	Chain        string `json:"chain"`
	PairAddress  string `json:"pairAddress"`
	TokenName    string `json:"tokenName"`
	TokenSymbol  string `json:"tokenSymbol"`
	TokenAddress string `json:"tokenAddress"`
	Exchange     string `json:"exchange"`
	ImageURI     string `json:"imageUri,omitempty"`

	PriceUsd  float64 `json:"priceUsd"`
	VolumeUsd float64 `json:"volumeUsd"`
	Mcap      float64 `json:"mcap"`

	PriceChangePcs map[string]float64 `json:"priceChangePcs"`
	Buys           int                `json:"buys"`
	Sells          int                `json:"sells"`

	Liquidity         float64 `json:"liquidity"`
	LiquidityChangePc float64 `json:"liquidityChangePc"`

	Audit struct {
		Mintable         bool `json:"mintable"`
		Freezable        bool `json:"freezable"`
		Honeypot         bool `json:"honeypot"`
		ContractVerified bool `json:"contractVerified"`
	} `json:"audit"`

	TokenCreatedAt *time.Time `json:"tokenCreatedAt,omitempty"`

	MigrationPc          float64   `json:"migrationPc"`
	Social               socialDTO `json:"social"`
	DexPaid              bool      `json:"dexPaid"`
	LiquidityLockedRatio float64   `json:"liquidityLockedRatio"`

	History []pointDTO           `json:"history,omitempty"`
	Effects map[string]effectDTO `json:"effects,omitempty"`
}

type socialDTO struct {
	Discord  string `json:"discord,omitempty"`
	Telegram string `json:"telegram,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
	Website  string `json:"website,omitempty"`
}

type pointDTO struct {
	At    time.Time `json:"at"`
	Price float64   `json:"price"`
}

type effectDTO struct {
	Dir string    `json:"dir"`
	At  time.Time `json:"at"`
}

// scanner renders one view's rows in page order. Expired cell effects
// are already filtered by the store at read time.
func (h *handlers) scanner(w http.ResponseWriter, r *http.Request) {
	view := model.View(r.URL.Query().Get("view"))
	if !view.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "view must be trending or fresh",
		})
		return
	}

	rows := h.store.ViewRows(view)
	out := make([]rowDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDTO(row))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"view": view,
		"rows": out,
	})
}

func toDTO(row store.Row) rowDTO {
	p := row.Pair

	dto := rowDTO{
		Chain:        string(p.ID.Chain),
		PairAddress:  p.ID.PairAddress,
		TokenName:    p.TokenName,
		TokenSymbol:  p.TokenSymbol,
		TokenAddress: p.TokenAddress,
		Exchange:     p.Exchange,
		ImageURI:     p.ImageURI,

		PriceUsd:  p.PriceUsd,
		VolumeUsd: p.VolumeUsd,
		Mcap:      p.Mcap,

		PriceChangePcs: map[string]float64{
			"5m":  p.PriceChangePcs.M5,
			"1h":  p.PriceChangePcs.H1,
			"6h":  p.PriceChangePcs.H6,
			"24h": p.PriceChangePcs.H24,
		},
		Buys:  p.Transactions.Buys,
		Sells: p.Transactions.Sells,

		Liquidity:         p.Liquidity.Current,
		LiquidityChangePc: p.Liquidity.ChangePc,

		MigrationPc: p.MigrationPc,
		Social: socialDTO{
			Discord:  p.Social.Discord,
			Telegram: p.Social.Telegram,
			Twitter:  p.Social.Twitter,
			Website:  p.Social.Website,
		},
		DexPaid:              p.DexPaid,
		LiquidityLockedRatio: p.LiquidityLockedRatio,
	}

	dto.Audit.Mintable = p.Audit.Mintable
	dto.Audit.Freezable = p.Audit.Freezable
	dto.Audit.Honeypot = p.Audit.Honeypot
	dto.Audit.ContractVerified = p.Audit.ContractVerified

	if !p.TokenCreatedAt.IsZero() {
		t := p.TokenCreatedAt
		dto.TokenCreatedAt = &t
	}

	for _, pt := range row.History {
		dto.History = append(dto.History, pointDTO{At: pt.At, Price: pt.Price})
	}

	effects := make(map[string]effectDTO)
	if !row.Effects.Price.At.IsZero() {
		effects["price"] = effectDTO{Dir: string(row.Effects.Price.Dir), At: row.Effects.Price.At}
	}
	if !row.Effects.Mcap.At.IsZero() {
		effects["mcap"] = effectDTO{Dir: string(row.Effects.Mcap.Dir), At: row.Effects.Mcap.At}
	}
	if len(effects) > 0 {
		dto.Effects = effects
	}

	return dto
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
