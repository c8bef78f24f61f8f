package interfaces

import (
	"context"

	"trade-auditor/internal/types"
)

// MarketData is the batched quote lookup behind the risk pipeline.
type MarketData interface {
	// Quotes returns the last price and up to lookbackDays of closes for each
	// symbol it could resolve. Missing symbols are absent from the map; an
	// error means nothing could be fetched.
	Quotes(ctx context.Context, symbols []string, lookbackDays int) (map[string]types.Quote, error)
}
