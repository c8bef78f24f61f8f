package interfaces

import (
	"context"

	"trade-auditor/internal/types"
)

// RiskAnalyzer prices a set of positions and aggregates portfolio Greeks.
type RiskAnalyzer interface {
	Analyze(ctx context.Context, records []types.RiskRecord) (*types.RiskReport, error)
}
