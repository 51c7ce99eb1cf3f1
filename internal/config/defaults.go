package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultRestURL            = "https://api-rs.dexcelerate.com"
	DefaultWSURL              = "wss://api-rs.dexcelerate.com/ws"
	DefaultAPITimeout         = 30 * time.Second
	DefaultMaxRetries         = 3
	DefaultReconnectBaseDelay = 500 * time.Millisecond
	DefaultReconnectMaxDelay  = 30 * time.Second
	DefaultSendRetryInterval  = 300 * time.Millisecond
	DefaultPingInterval       = 30 * time.Second
	DefaultPages              = 1
	DefaultFlushInterval      = 500 * time.Millisecond
	DefaultHistoryLimit       = 60
	DefaultEffectTTL          = 1200 * time.Millisecond
	DefaultServerAddr         = ":8080"
	DefaultReadTimeout        = 10 * time.Second
	DefaultWriteTimeout       = 10 * time.Second
	DefaultShutdownTimeout    = 5 * time.Second
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "json"
	DefaultLogMaxSizeMB       = 100
	DefaultLogMaxBackups      = 5
	DefaultLogMaxAgeDays      = 14
)

func (c *Config) applyDefaults() {
	// API defaults
	if c.API.RestURL == "" {
		c.API.RestURL = DefaultRestURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}

	// Stream defaults
	if c.Stream.WSURL == "" {
		c.Stream.WSURL = DefaultWSURL
	}
	if c.Stream.ReconnectBaseDelay == 0 {
		c.Stream.ReconnectBaseDelay = DefaultReconnectBaseDelay
	}
	if c.Stream.ReconnectMaxDelay == 0 {
		c.Stream.ReconnectMaxDelay = DefaultReconnectMaxDelay
	}
	if c.Stream.SendRetryInterval == 0 {
		c.Stream.SendRetryInterval = DefaultSendRetryInterval
	}
	if c.Stream.PingInterval == 0 {
		c.Stream.PingInterval = DefaultPingInterval
	}

	// Scanner defaults
	if c.Scanner.Pages == 0 {
		c.Scanner.Pages = DefaultPages
	}
	if c.Scanner.FlushInterval == 0 {
		c.Scanner.FlushInterval = DefaultFlushInterval
	}
	if c.Scanner.HistoryLimit == 0 {
		c.Scanner.HistoryLimit = DefaultHistoryLimit
	}
	if c.Scanner.EffectTTL == 0 {
		c.Scanner.EffectTTL = DefaultEffectTTL
	}

	// Server defaults
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = DefaultLogMaxSizeMB
	}
	if c.Logging.MaxBackups == 0 {
		c.Logging.MaxBackups = DefaultLogMaxBackups
	}
	if c.Logging.MaxAgeDays == 0 {
		c.Logging.MaxAgeDays = DefaultLogMaxAgeDays
	}
}
