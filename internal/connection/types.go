package connection

import (
	"errors"
	"time"

	"tokenscan/internal/stream"
)

// Errors
var (
	ErrNotConnected  = errors.New("not connected")
	ErrAlreadyClosed = errors.New("already closed")
	ErrManagerClosed = errors.New("manager closed")
)

// State is the lifecycle state of the streaming connection.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateOpen         State = "open"
	StateClosed       State = "closed"
	StateErrored      State = "errored"
)

// Listener receives every decoded inbound message. Listeners run on
// the manager's read goroutine and are isolated from each other: a
// panicking listener never disturbs the rest.
type Listener func(stream.Message)

// ClientConfig configures a single websocket connection.
type ClientConfig struct {
	URL              string        // Streaming endpoint (e.g. wss://api-rs.dexcelerate.com/ws)
	HandshakeTimeout time.Duration // Dial deadline
	WriteTimeout     time.Duration // Write deadline for sends
	PingInterval     time.Duration // Keepalive ping cadence
	BufferSize       int           // Inbound message channel buffer
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     5 * time.Second,
		PingInterval:     30 * time.Second,
		BufferSize:       4096,
	}
}

// ManagerConfig configures the connection manager.
type ManagerConfig struct {
	URL                string        // Streaming endpoint
	ReconnectBaseDelay time.Duration // First reconnect wait, doubles per consecutive failure
	ReconnectMaxDelay  time.Duration // Backoff cap
	SendRetryInterval  time.Duration // Poll cadence for sends issued while not open
	SendRetryTimeout   time.Duration // Give up on a pending send after this long
	Client             ClientConfig  // Per-connection settings (URL is filled from above)
}

// DefaultManagerConfig returns sensible defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		ReconnectBaseDelay: 500 * time.Millisecond,
		ReconnectMaxDelay:  30 * time.Second,
		SendRetryInterval:  300 * time.Millisecond,
		SendRetryTimeout:   time.Minute,
		Client:             DefaultClientConfig(),
	}
}
