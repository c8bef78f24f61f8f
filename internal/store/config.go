package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Audit struct {
		MinHoldingDays float64 `yaml:"min_holding_days"`
	} `yaml:"audit"`
	Risk struct {
		RiskFreeRate       float64 `yaml:"risk_free_rate"`
		DefaultVolatility  float64 `yaml:"default_volatility"`
		MinVolatility      float64 `yaml:"min_volatility"`
		VolWindow          int     `yaml:"vol_window"`
		LookbackDays       int     `yaml:"lookback_days"`
		TradingDaysPerYear int     `yaml:"trading_days_per_year"`
	} `yaml:"risk"`
	MarketData struct {
		Source                string  `yaml:"source"`
		Exchange              string  `yaml:"exchange"`
		Interval              string  `yaml:"interval"`
		QuotesFile            string  `yaml:"quotes_file"`
		CacheDir              string  `yaml:"cache_dir"`
		CacheTTLMinutes       int     `yaml:"cache_ttl_minutes"`
		RequestsPerSecond     float64 `yaml:"requests_per_second"`
		MaxConcurrency        int     `yaml:"max_concurrency"`
		BreakerFailures       uint32  `yaml:"breaker_failures"`
		BreakerTimeoutSeconds int     `yaml:"breaker_timeout_seconds"`
	} `yaml:"market_data"`
	Report struct {
		Format    string `yaml:"format"`
		OutputDir string `yaml:"output_dir"`
	} `yaml:"report"`
	Metrics struct {
		Textfile string `yaml:"textfile"`
	} `yaml:"metrics"`
}

// Default returns a config with every default applied, as if loaded from an
// empty file.
func Default() *Config {
	var c Config
	c.applyDefaults()
	return &c
}

func (c *Config) applyDefaults() {
	if c.Audit.MinHoldingDays == 0 {
		c.Audit.MinHoldingDays = 0.01
	}
	if c.Risk.RiskFreeRate == 0 {
		c.Risk.RiskFreeRate = 0.05
	}
	if c.Risk.DefaultVolatility == 0 {
		c.Risk.DefaultVolatility = 0.40
	}
	if c.Risk.MinVolatility == 0 {
		c.Risk.MinVolatility = 0.01
	}
	if c.Risk.VolWindow == 0 {
		c.Risk.VolWindow = 30
	}
	if c.Risk.LookbackDays == 0 {
		c.Risk.LookbackDays = 90
	}
	if c.Risk.TradingDaysPerYear == 0 {
		c.Risk.TradingDaysPerYear = 252
	}
	if c.MarketData.Source == "" {
		c.MarketData.Source = "STATIC"
	}
	if c.MarketData.Exchange == "" {
		c.MarketData.Exchange = "NSE"
	}
	if c.MarketData.Interval == "" {
		c.MarketData.Interval = "day"
	}
	if c.MarketData.QuotesFile == "" {
		c.MarketData.QuotesFile = "quotes.yaml"
	}
	if c.MarketData.CacheDir == "" {
		c.MarketData.CacheDir = "cache/marketdata"
	}
	if c.MarketData.CacheTTLMinutes == 0 {
		c.MarketData.CacheTTLMinutes = 60
	}
	if c.MarketData.RequestsPerSecond == 0 {
		c.MarketData.RequestsPerSecond = 3
	}
	if c.MarketData.MaxConcurrency == 0 {
		c.MarketData.MaxConcurrency = 3
	}
	if c.MarketData.BreakerFailures == 0 {
		c.MarketData.BreakerFailures = 5
	}
	if c.MarketData.BreakerTimeoutSeconds == 0 {
		c.MarketData.BreakerTimeoutSeconds = 30
	}
	if c.Report.Format == "" {
		c.Report.Format = "text"
	}
	if c.Report.OutputDir == "" {
		c.Report.OutputDir = "logs/reports"
	}
}

func (c *Config) Validate() error {
	if c.Audit.MinHoldingDays <= 0 {
		return fmt.Errorf("audit.min_holding_days must be positive, got %v", c.Audit.MinHoldingDays)
	}
	if c.Risk.DefaultVolatility <= 0 || c.Risk.DefaultVolatility > 5 {
		return fmt.Errorf("risk.default_volatility must be in (0, 5], got %.4f", c.Risk.DefaultVolatility)
	}
	if c.Risk.MinVolatility < 0 || c.Risk.MinVolatility >= c.Risk.DefaultVolatility {
		return fmt.Errorf("risk.min_volatility must be in [0, default_volatility), got %.4f", c.Risk.MinVolatility)
	}
	if c.Risk.VolWindow < 2 {
		return fmt.Errorf("risk.vol_window must be at least 2, got %d", c.Risk.VolWindow)
	}
	if c.MarketData.Source != "STATIC" && c.MarketData.Source != "KITE" {
		return fmt.Errorf("invalid market_data.source '%s': must be 'STATIC' or 'KITE'", c.MarketData.Source)
	}
	if c.MarketData.RequestsPerSecond < 0 {
		return fmt.Errorf("market_data.requests_per_second must not be negative, got %v", c.MarketData.RequestsPerSecond)
	}
	switch c.Report.Format {
	case "text", "json", "csv":
	default:
		return fmt.Errorf("report.format must be 'text', 'json' or 'csv', got '%s'", c.Report.Format)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}

// LoadConfigOrDefault behaves like LoadConfig but falls back to Default when
// the file does not exist.
func LoadConfigOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return LoadConfig(path)
}
