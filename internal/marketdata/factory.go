package marketdata

import (
	"context"
	"fmt"
	"os"
	"time"

	"trade-auditor/internal/interfaces"
	"trade-auditor/internal/logger"
	"trade-auditor/internal/store"
)

// New creates the market data source named by configuration. Kite
// credentials come from KITE_API_KEY and KITE_ACCESS_TOKEN.
func New(cfg *store.Config) (interfaces.MarketData, error) {
	md := cfg.MarketData
	switch md.Source {
	case "STATIC":
		s, err := LoadStatic(md.QuotesFile)
		if err != nil {
			return nil, err
		}
		return s, nil

	case "KITE":
		cache, err := NewCache(md.CacheDir, time.Duration(md.CacheTTLMinutes)*time.Minute)
		if err != nil {
			return nil, err
		}
		if n, err := cache.CleanupExpired(); err == nil && n > 0 {
			logger.Debug(context.Background(), "Removed expired history cache entries", "count", n)
		}
		k, err := NewKite(KiteParams{
			APIKey:            os.Getenv("KITE_API_KEY"),
			AccessToken:       os.Getenv("KITE_ACCESS_TOKEN"),
			Exchange:          md.Exchange,
			Interval:          md.Interval,
			RequestsPerSecond: md.RequestsPerSecond,
			MaxConcurrency:    md.MaxConcurrency,
			BreakerFailures:   md.BreakerFailures,
			BreakerTimeout:    time.Duration(md.BreakerTimeoutSeconds) * time.Second,
		}, cache)
		if err != nil {
			return nil, err
		}
		return k, nil

	default:
		return nil, fmt.Errorf("unknown market data source: %s (valid options: STATIC, KITE)", md.Source)
	}
}
