// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/aristath/invesmart/internal/utils"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Provider names accepted by YAHOO_PROVIDER
const (
	ProviderHTTP   = "http"
	ProviderNative = "native"
)

// Config holds application configuration
type Config struct {
	DataDir   string // Directory for the cache database (always absolute)
	Port      int
	DevMode   bool
	LogLevel  string
	LogPretty bool
	Yahoo     YahooConfig
	Cache     CacheConfig
	Watchlist WatchlistConfig
}

// YahooConfig selects and tunes the market data provider
type YahooConfig struct {
	Provider string        `yaml:"provider"`
	BaseURL  string        `yaml:"base_url"` // Empty = public endpoint
	Timeout  time.Duration `yaml:"timeout"`
}

// CacheConfig controls the client response cache
type CacheConfig struct {
	Enabled         bool   `yaml:"enabled"`
	CleanupSchedule string `yaml:"cleanup_schedule"`
}

// WatchlistConfig seeds the periodically refreshed watchlist
type WatchlistConfig struct {
	Symbols         []string `yaml:"symbols"`
	Range           string   `yaml:"range"`
	Interval        string   `yaml:"interval"`
	RefreshSchedule string   `yaml:"refresh_schedule"`
}

// fileConfig mirrors the optional YAML overlay. Pointers distinguish
// "absent" from zero values.
type fileConfig struct {
	Server struct {
		Port     *int    `yaml:"port"`
		DevMode  *bool   `yaml:"dev_mode"`
		DataDir  *string `yaml:"data_dir"`
		LogLevel *string `yaml:"log_level"`
	} `yaml:"server"`
	Yahoo struct {
		Provider *string `yaml:"provider"`
		BaseURL  *string `yaml:"base_url"`
		Timeout  *string `yaml:"timeout"`
	} `yaml:"yahoo"`
	Cache struct {
		Enabled         *bool   `yaml:"enabled"`
		CleanupSchedule *string `yaml:"cleanup_schedule"`
	} `yaml:"cache"`
	Watchlist struct {
		Symbols         []string `yaml:"symbols"`
		Range           *string  `yaml:"range"`
		Interval        *string  `yaml:"interval"`
		RefreshSchedule *string  `yaml:"refresh_schedule"`
	} `yaml:"watchlist"`
}

// Defaults returns the built-in configuration before any overlay
func Defaults() *Config {
	return &Config{
		DataDir:  "./data",
		Port:     8001,
		LogLevel: "info",
		Yahoo: YahooConfig{
			Provider: ProviderHTTP,
			Timeout:  30 * time.Second,
		},
		Cache: CacheConfig{
			Enabled:         true,
			CleanupSchedule: "@hourly",
		},
		Watchlist: WatchlistConfig{
			Symbols:         []string{"AAPL", "MSFT", "^GSPC", "^WIG20"},
			Range:           "5d",
			Interval:        "5m",
			RefreshSchedule: "@every 60s",
		},
	}
}

// Load reads configuration in three layers: defaults, the YAML file named
// by INVESMART_CONFIG, then environment variables (.env included).
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := Defaults()

	if path := getEnv("INVESMART_CONFIG", ""); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	absDataDir, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	cfg.DataDir = absDataDir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fc.Server.Port != nil {
		c.Port = *fc.Server.Port
	}
	if fc.Server.DevMode != nil {
		c.DevMode = *fc.Server.DevMode
	}
	if fc.Server.DataDir != nil {
		c.DataDir = *fc.Server.DataDir
	}
	if fc.Server.LogLevel != nil {
		c.LogLevel = *fc.Server.LogLevel
	}
	if fc.Yahoo.Provider != nil {
		c.Yahoo.Provider = *fc.Yahoo.Provider
	}
	if fc.Yahoo.BaseURL != nil {
		c.Yahoo.BaseURL = *fc.Yahoo.BaseURL
	}
	if fc.Yahoo.Timeout != nil {
		d, err := time.ParseDuration(*fc.Yahoo.Timeout)
		if err != nil {
			return fmt.Errorf("invalid yahoo.timeout %q: %w", *fc.Yahoo.Timeout, err)
		}
		c.Yahoo.Timeout = d
	}
	if fc.Cache.Enabled != nil {
		c.Cache.Enabled = *fc.Cache.Enabled
	}
	if fc.Cache.CleanupSchedule != nil {
		c.Cache.CleanupSchedule = *fc.Cache.CleanupSchedule
	}
	if len(fc.Watchlist.Symbols) > 0 {
		c.Watchlist.Symbols = fc.Watchlist.Symbols
	}
	if fc.Watchlist.Range != nil {
		c.Watchlist.Range = *fc.Watchlist.Range
	}
	if fc.Watchlist.Interval != nil {
		c.Watchlist.Interval = *fc.Watchlist.Interval
	}
	if fc.Watchlist.RefreshSchedule != nil {
		c.Watchlist.RefreshSchedule = *fc.Watchlist.RefreshSchedule
	}

	return nil
}

func (c *Config) applyEnv() {
	c.DataDir = getEnv("DATA_DIR", c.DataDir)
	c.Port = getEnvAsInt("PORT", c.Port)
	c.DevMode = getEnvAsBool("DEV_MODE", c.DevMode)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogPretty = getEnvAsBool("LOG_PRETTY", c.DevMode)

	c.Yahoo.Provider = getEnv("YAHOO_PROVIDER", c.Yahoo.Provider)
	c.Yahoo.BaseURL = getEnv("YAHOO_BASE_URL", c.Yahoo.BaseURL)
	c.Yahoo.Timeout = getEnvAsDuration("YAHOO_TIMEOUT", c.Yahoo.Timeout)

	c.Cache.Enabled = getEnvAsBool("CACHE_ENABLED", c.Cache.Enabled)
	c.Cache.CleanupSchedule = getEnv("CACHE_CLEANUP_SCHEDULE", c.Cache.CleanupSchedule)

	if symbols := getEnvAsList("WATCHLIST_SYMBOLS"); len(symbols) > 0 {
		c.Watchlist.Symbols = symbols
	}
	c.Watchlist.Range = getEnv("WATCHLIST_RANGE", c.Watchlist.Range)
	c.Watchlist.Interval = getEnv("WATCHLIST_INTERVAL", c.Watchlist.Interval)
	c.Watchlist.RefreshSchedule = getEnv("REFRESH_SCHEDULE", c.Watchlist.RefreshSchedule)
}

// validRanges mirrors the lookback windows the series module understands
var validRanges = map[string]bool{
	"1d": true, "5d": true, "1mo": true, "3mo": true, "6mo": true, "1y": true,
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	switch c.Yahoo.Provider {
	case ProviderHTTP, ProviderNative:
	default:
		return fmt.Errorf("unknown yahoo provider: %q", c.Yahoo.Provider)
	}

	if len(c.Watchlist.Symbols) == 0 {
		return fmt.Errorf("watchlist requires at least one symbol")
	}
	if !validRanges[c.Watchlist.Range] {
		return fmt.Errorf("unknown watchlist range: %q", c.Watchlist.Range)
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	return utils.ParseCSV(os.Getenv(key))
}
