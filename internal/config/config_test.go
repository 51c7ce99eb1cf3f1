package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenscan/internal/api"
	"tokenscan/internal/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAndValidate(t *testing.T) {
	path := writeConfig(t, `
instance:
  id: scanner-1
api:
  rest_url: https://example.test
scanner:
  pages: 2
  trending:
    min_vol_24h: 1000
  fresh:
    max_age_sec: 7200
`)

	cfg, err := LoadAndValidate(path)
	require.NoError(t, err)

	assert.Equal(t, "scanner-1", cfg.Instance.ID)
	assert.Equal(t, "https://example.test", cfg.API.RestURL)
	assert.Equal(t, 2, cfg.Scanner.Pages)

	// Defaults fill everything the file omits.
	assert.Equal(t, DefaultWSURL, cfg.Stream.WSURL)
	assert.Equal(t, 500*time.Millisecond, cfg.Stream.ReconnectBaseDelay)
	assert.Equal(t, 30*time.Second, cfg.Stream.ReconnectMaxDelay)
	assert.Equal(t, 500*time.Millisecond, cfg.Scanner.FlushInterval)
	assert.Equal(t, 60, cfg.Scanner.HistoryLimit)
	assert.Equal(t, 1200*time.Millisecond, cfg.Scanner.EffectTTL)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("SCANNER_ID", "from-env")
	path := writeConfig(t, `
instance:
  id: ${SCANNER_ID}
`)

	cfg, err := LoadAndValidate(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Instance.ID)
}

func TestValidateRejectsMissingInstanceID(t *testing.T) {
	path := writeConfig(t, `
api:
  rest_url: https://example.test
`)

	_, err := LoadAndValidate(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "instance.id")
}

func TestValidateRejectsBadURLs(t *testing.T) {
	path := writeConfig(t, `
instance:
  id: scanner-1
stream:
  ws_url: ftp://nope
`)

	_, err := LoadAndValidate(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stream.ws_url")
}

func TestFiltersMaterializeParams(t *testing.T) {
	sc := ScannerConfig{
		Trending: FilterConfig{Chain: "SOL", MinVol24H: 1000, IsNotHP: true},
		Fresh:    FilterConfig{MaxAgeSec: 7200},
	}

	filters := sc.Filters()

	trending := filters[model.ViewTrending]
	assert.Equal(t, api.RankByVolume, trending.RankBy)
	assert.Equal(t, api.OrderDesc, trending.OrderBy)
	assert.Equal(t, "SOL", trending.Chain)
	assert.Equal(t, 1000.0, trending.MinVol24H)
	assert.True(t, trending.IsNotHP)
	assert.Equal(t, 1, trending.Page)

	fresh := filters[model.ViewFresh]
	assert.Equal(t, api.RankByAge, fresh.RankBy)
	assert.EqualValues(t, 7200, fresh.MaxAge)
}
