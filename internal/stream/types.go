package stream

import (
	"encoding/json"

	"tokenscan/internal/api"
	"tokenscan/internal/model"
)

// Inbound event kinds.
const (
	EventTick         = "tick"
	EventPairStats    = "pair-stats"
	EventScannerPairs = "scanner-pairs"
)

// Outbound event kinds.
const (
	EventSubscribePair            = "subscribe-pair"
	EventUnsubscribePair          = "unsubscribe-pair"
	EventSubscribePairStats       = "subscribe-pair-stats"
	EventUnsubscribePairStats     = "unsubscribe-pair-stats"
	EventScannerFilter            = "scanner-filter"
	EventUnsubscribeScannerFilter = "unsubscribe-scanner-filter"
)

// envelope is the outer shape of every inbound frame.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Message is one decoded inbound event. The set of implementations is
// closed: TickMessage, PairStatsMessage, ScannerPairsMessage.
type Message interface {
	Event() string
}

// TickMessage carries a batch of swaps for one pair.
type TickMessage struct {
	Data TickData
}

func (TickMessage) Event() string { return EventTick }

// PairStatsMessage carries an audit/social/liquidity-lock snapshot.
type PairStatsMessage struct {
	Data PairStatsData
}

func (PairStatsMessage) Event() string { return EventPairStats }

// ScannerPairsMessage carries a server-pushed dataset refresh for an
// active scanner-filter subscription.
type ScannerPairsMessage struct {
	Data ScannerPairsData
}

func (ScannerPairsMessage) Event() string { return EventScannerPairs }

// -----------------------------------------------------------------------------
// tick
// -----------------------------------------------------------------------------

// TickPairRef identifies the pair a tick belongs to.
type TickPairRef struct {
	Chain string `json:"chain"`
	Pair  string `json:"pair"`
}

// Swap is one trade inside a tick. Numeric fields arrive as strings.
type Swap struct {
	PriceToken1Usd string `json:"priceToken1Usd"`
	AmountToken1   string `json:"amountToken1"`
	TokenInAddress string `json:"tokenInAddress"`
	IsOutlier      bool   `json:"isOutlier"`
}

// TickData is the payload of a tick event.
type TickData struct {
	Pair  TickPairRef `json:"pair"`
	Swaps []Swap      `json:"swaps"`
}

// PairID resolves the canonical identifier for this tick.
func (d TickData) PairID() model.PairID {
	return model.PairID{
		Chain:       model.ChainFromName(d.Pair.Chain),
		PairAddress: d.Pair.Pair,
	}
}

// LatestSwap returns the last non-outlier swap in the batch, which
// supplies the new price. False when every swap is an outlier.
func (d TickData) LatestSwap() (Swap, bool) {
	for i := len(d.Swaps) - 1; i >= 0; i-- {
		if !d.Swaps[i].IsOutlier {
			return d.Swaps[i], true
		}
	}
	return Swap{}, false
}

// -----------------------------------------------------------------------------
// pair-stats
// -----------------------------------------------------------------------------

// PairStatsPair is the per-pair section of a pair-stats payload.
// Optional fields are pointers: absent means "keep the current value",
// never "clear it".
type PairStatsPair struct {
	PairAddress string `json:"pairAddress"`
	Chain       string `json:"chain"`

	MintAuthorityRenounced   bool `json:"mintAuthorityRenounced"`
	FreezeAuthorityRenounced bool `json:"freezeAuthorityRenounced"`
	Token1IsHoneypot         bool `json:"token1IsHoneypot"`
	IsVerified               bool `json:"isVerified"`

	LinkDiscord  *string `json:"linkDiscord"`
	LinkTelegram *string `json:"linkTelegram"`
	LinkTwitter  *string `json:"linkTwitter"`
	LinkWebsite  *string `json:"linkWebsite"`

	DexPaid          *bool  `json:"dexPaid"`
	TotalLockedRatio string `json:"totalLockedRatio"`
}

// PairStatsData is the payload of a pair-stats event.
type PairStatsData struct {
	Pair              PairStatsPair `json:"pair"`
	MigrationProgress string        `json:"migrationProgress"`
}

// PairID resolves the canonical identifier for this stats update.
func (d PairStatsData) PairID() model.PairID {
	return model.PairID{
		Chain:       model.ChainFromName(d.Pair.Chain),
		PairAddress: d.Pair.PairAddress,
	}
}

// -----------------------------------------------------------------------------
// scanner-pairs
// -----------------------------------------------------------------------------

// ScannerPairsData is the payload of a scanner-pairs event: the filter
// it answers plus a full replacement dataset for that filter's view.
type ScannerPairsData struct {
	Filter  api.ScannerParams `json:"filter"`
	Results struct {
		Pairs []api.ScannerRow `json:"pairs"`
	} `json:"results"`
}

// -----------------------------------------------------------------------------
// outbound
// -----------------------------------------------------------------------------

// Outbound is one frame sent to the streaming channel.
type Outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// PairRoom addresses the per-pair subscription channels.
type PairRoom struct {
	Pair  string `json:"pair"`
	Token string `json:"token"`
	Chain string `json:"chain"`
}

// SubscribePair subscribes to tick updates for one pair.
func SubscribePair(room PairRoom) Outbound {
	return Outbound{Event: EventSubscribePair, Data: room}
}

// UnsubscribePair tears down a tick subscription.
func UnsubscribePair(room PairRoom) Outbound {
	return Outbound{Event: EventUnsubscribePair, Data: room}
}

// SubscribePairStats subscribes to pair-stats updates for one pair.
func SubscribePairStats(room PairRoom) Outbound {
	return Outbound{Event: EventSubscribePairStats, Data: room}
}

// UnsubscribePairStats tears down a pair-stats subscription.
func UnsubscribePairStats(room PairRoom) Outbound {
	return Outbound{Event: EventUnsubscribePairStats, Data: room}
}

// ScannerFilter subscribes to server-side dataset pushes for a filter.
func ScannerFilter(params api.ScannerParams) Outbound {
	return Outbound{Event: EventScannerFilter, Data: params}
}

// UnsubscribeScannerFilter tears down a filter subscription.
func UnsubscribeScannerFilter(params api.ScannerParams) Outbound {
	return Outbound{Event: EventUnsubscribeScannerFilter, Data: params}
}
