package marketdataobs

import (
	"context"
	"time"

	"trade-auditor/internal/interfaces"
	"trade-auditor/internal/logger"
	"trade-auditor/internal/metrics"
	"trade-auditor/internal/trace"
	"trade-auditor/internal/types"
)

// observableMarketData wraps a MarketData source with logging, tracing and
// fetch metrics
type observableMarketData struct {
	md      interfaces.MarketData
	metrics *metrics.Metrics
}

var _ interfaces.MarketData = (*observableMarketData)(nil)

func Wrap(md interfaces.MarketData, m *metrics.Metrics) interfaces.MarketData {
	return &observableMarketData{md: md, metrics: m}
}

func (o *observableMarketData) Quotes(ctx context.Context, symbols []string, lookbackDays int) (map[string]types.Quote, error) {
	ctx, span := trace.StartSpan(ctx, "marketdata.Quotes")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching quotes", "symbols", symbols, "lookback_days", lookbackDays)
	start := time.Now()

	quotes, err := o.md.Quotes(ctx, symbols, lookbackDays)
	o.metrics.ObserveFetch(time.Since(start), err)
	if err != nil {
		trace.Fail(span, err)
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch quotes", err, "symbols", symbols)
		return nil, err
	}

	trace.Counts(span, "requested", len(symbols), "resolved", len(quotes))
	for _, s := range symbols {
		if _, ok := quotes[s]; !ok {
			logger.WarnSkip(ctx, 1, "No quote for symbol", "symbol", s)
		}
	}
	logger.DebugSkip(ctx, 1, "Quotes fetched successfully",
		"requested", len(symbols),
		"resolved", len(quotes),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return quotes, nil
}
