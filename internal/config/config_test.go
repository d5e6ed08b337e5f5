package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATA_DIR", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8001, cfg.Port)
	assert.Equal(t, ProviderHTTP, cfg.Yahoo.Provider)
	assert.Equal(t, 30*time.Second, cfg.Yahoo.Timeout)
	assert.Equal(t, []string{"AAPL", "MSFT", "^GSPC", "^WIG20"}, cfg.Watchlist.Symbols)
	assert.Equal(t, "5d", cfg.Watchlist.Range)
	assert.Equal(t, "5m", cfg.Watchlist.Interval)
	assert.Equal(t, "@every 60s", cfg.Watchlist.RefreshSchedule)
	assert.True(t, filepath.IsAbs(cfg.DataDir))
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "invesmart.yaml")
	yamlDoc := `
server:
  port: 9000
  data_dir: ` + dir + `
yahoo:
  provider: native
  timeout: 5s
watchlist:
  symbols: [TSLA, MSFT]
  range: 1mo
  interval: 1d
`
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o644))

	t.Setenv("INVESMART_CONFIG", path)
	t.Setenv("PORT", "9100")
	t.Setenv("WATCHLIST_SYMBOLS", " AAPL , ^GSPC ,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port, "env wins over file")
	assert.Equal(t, ProviderNative, cfg.Yahoo.Provider)
	assert.Equal(t, 5*time.Second, cfg.Yahoo.Timeout)
	assert.Equal(t, []string{"AAPL", "^GSPC"}, cfg.Watchlist.Symbols)
	assert.Equal(t, "1mo", cfg.Watchlist.Range)
	assert.Equal(t, "1d", cfg.Watchlist.Interval)
	assert.Equal(t, dir, cfg.DataDir)
}

func TestLoad_BadFile(t *testing.T) {
	t.Setenv("DATA_DIR", t.TempDir())
	t.Setenv("INVESMART_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port", func(c *Config) { c.Port = 0 }},
		{"provider", func(c *Config) { c.Yahoo.Provider = "bloomberg" }},
		{"empty watchlist", func(c *Config) { c.Watchlist.Symbols = nil }},
		{"range", func(c *Config) { c.Watchlist.Range = "10y" }},
	}

	require.NoError(t, Defaults().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
