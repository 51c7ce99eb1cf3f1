// Package config defines the scanner service configuration, loaded
// from YAML with ${VAR} environment expansion.
package config

import (
	"time"

	"tokenscan/internal/api"
	"tokenscan/internal/model"
)

// Config is the root configuration for a scanner instance.
type Config struct {
	Instance InstanceConfig `yaml:"instance"`
	API      APIConfig      `yaml:"api"`
	Stream   StreamConfig   `yaml:"stream"`
	Scanner  ScannerConfig  `yaml:"scanner"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// InstanceConfig identifies this scanner instance.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// APIConfig holds upstream REST settings.
type APIConfig struct {
	RestURL    string        `yaml:"rest_url"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// StreamConfig holds the websocket connection settings.
type StreamConfig struct {
	WSURL              string        `yaml:"ws_url"`
	ReconnectBaseDelay time.Duration `yaml:"reconnect_base_delay"`
	ReconnectMaxDelay  time.Duration `yaml:"reconnect_max_delay"`
	SendRetryInterval  time.Duration `yaml:"send_retry_interval"`
	PingInterval       time.Duration `yaml:"ping_interval"`
}

// ScannerConfig holds the view and reconciliation settings.
type ScannerConfig struct {
	Pages           int           `yaml:"pages"`
	FlushInterval   time.Duration `yaml:"flush_interval"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	HistoryLimit    int           `yaml:"history_limit"`
	EffectTTL       time.Duration `yaml:"effect_ttl"`
	Trending        FilterConfig  `yaml:"trending"`
	Fresh           FilterConfig  `yaml:"fresh"`
}

// FilterConfig holds the per-view query filters.
type FilterConfig struct {
	Chain     string  `yaml:"chain"`
	IsNotHP   bool    `yaml:"is_not_hp"`
	MinVol24H float64 `yaml:"min_vol_24h"`
	MinMcap   float64 `yaml:"min_mcap"`
	MaxAgeSec int64   `yaml:"max_age_sec"`
}

// ServerConfig holds the HTTP surface settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // "json" or "console"
	File       string `yaml:"file"`   // empty means stdout only
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Filters materializes the per-view scanner query parameters.
func (c *ScannerConfig) Filters() map[model.View]api.ScannerParams {
	return map[model.View]api.ScannerParams{
		model.ViewTrending: filterParams(c.Trending, api.RankByVolume),
		model.ViewFresh:    filterParams(c.Fresh, api.RankByAge),
	}
}

func filterParams(f FilterConfig, rankBy api.RankBy) api.ScannerParams {
	return api.ScannerParams{
		Chain:     f.Chain,
		RankBy:    rankBy,
		OrderBy:   api.OrderDesc,
		IsNotHP:   f.IsNotHP,
		MinVol24H: f.MinVol24H,
		MinMcap:   f.MinMcap,
		MaxAge:    f.MaxAgeSec,
		Page:      1,
	}
}
