package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if !strings.HasPrefix(c.API.RestURL, "http://") && !strings.HasPrefix(c.API.RestURL, "https://") {
		return fmt.Errorf("api.rest_url must be an http(s) URL, got %q", c.API.RestURL)
	}
	if !strings.HasPrefix(c.Stream.WSURL, "ws://") && !strings.HasPrefix(c.Stream.WSURL, "wss://") {
		return fmt.Errorf("stream.ws_url must be a ws(s) URL, got %q", c.Stream.WSURL)
	}

	if c.Stream.ReconnectBaseDelay > c.Stream.ReconnectMaxDelay {
		return errors.New("stream.reconnect_base_delay must not exceed stream.reconnect_max_delay")
	}

	if c.Scanner.Pages < 1 {
		return errors.New("scanner.pages must be >= 1")
	}
	if c.Scanner.HistoryLimit < 1 {
		return errors.New("scanner.history_limit must be >= 1")
	}
	if c.Scanner.FlushInterval <= 0 {
		return errors.New("scanner.flush_interval must be positive")
	}
	if c.Scanner.EffectTTL <= 0 {
		return errors.New("scanner.effect_ttl must be positive")
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}

	return nil
}
