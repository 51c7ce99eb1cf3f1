package stream

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownEvent marks an inbound frame whose event kind is not part
// of the protocol. Callers drop these without tearing the connection.
var ErrUnknownEvent = errors.New("unknown event")

// Decode parses one inbound frame into its message variant.
func Decode(data []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decoding envelope: %w", err)
	}

	switch env.Event {
	case EventTick:
		var d TickData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, fmt.Errorf("decoding tick payload: %w", err)
		}
		return TickMessage{Data: d}, nil

	case EventPairStats:
		var d PairStatsData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, fmt.Errorf("decoding pair-stats payload: %w", err)
		}
		return PairStatsMessage{Data: d}, nil

	case EventScannerPairs:
		var d ScannerPairsData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, fmt.Errorf("decoding scanner-pairs payload: %w", err)
		}
		return ScannerPairsMessage{Data: d}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Event)
	}
}
