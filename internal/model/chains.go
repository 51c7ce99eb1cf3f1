package model

import "strconv"

// Chain is the symbolic chain name used in pair identifiers and in
// streaming subscription payloads.
type Chain string

const (
	ChainETH  Chain = "ETH"
	ChainSOL  Chain = "SOL"
	ChainBASE Chain = "BASE"
	ChainBSC  Chain = "BSC"
)

// ChainFromID maps the upstream numeric chain identifier to its
// symbolic name. The table is a compatibility contract with the data
// source and must be preserved exactly: unmapped codes collapse to
// ETH, which is lossy for chains the upstream adds later.
func ChainFromID(id int64) Chain {
	switch id {
	case 900:
		return ChainSOL
	case 8453:
		return ChainBASE
	case 56:
		return ChainBSC
	default:
		return ChainETH
	}
}

// ChainFromName parses a chain name as carried by streaming messages.
// Unknown names fall back to ETH, mirroring ChainFromID.
func ChainFromName(name string) Chain {
	switch Chain(name) {
	case ChainSOL, ChainBASE, ChainBSC, ChainETH:
		return Chain(name)
	default:
		return ChainETH
	}
}

// ParseChainID is a convenience for wire payloads that carry the chain
// id as a string.
func ParseChainID(s string) Chain {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return ChainETH
	}
	return ChainFromID(id)
}
