package riskobs

import (
	"context"
	"time"

	"trade-auditor/internal/interfaces"
	"trade-auditor/internal/logger"
	"trade-auditor/internal/metrics"
	"trade-auditor/internal/trace"
	"trade-auditor/internal/types"
)

// observableAnalyzer wraps a RiskAnalyzer with logging, tracing and metrics
type observableAnalyzer struct {
	analyzer interfaces.RiskAnalyzer
	metrics  *metrics.Metrics
}

var _ interfaces.RiskAnalyzer = (*observableAnalyzer)(nil)

// Wrap wraps an analyzer with observability middleware. m may be nil.
func Wrap(analyzer interfaces.RiskAnalyzer, m *metrics.Metrics) interfaces.RiskAnalyzer {
	return &observableAnalyzer{analyzer: analyzer, metrics: m}
}

func (o *observableAnalyzer) Analyze(ctx context.Context, records []types.RiskRecord) (*types.RiskReport, error) {
	ctx, span := trace.StartSpan(ctx, "risk.Analyze")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Starting risk analysis", "records", len(records))
	start := time.Now()

	report, err := o.analyzer.Analyze(ctx, records)
	if err != nil {
		trace.Fail(span, err)
		logger.ErrorWithErrSkip(ctx, 1, "Risk analysis failed", err, "records", len(records))
		return nil, err
	}
	o.metrics.ObserveRisk(report, time.Since(start))
	trace.Counts(span, "positions", len(report.Positions), "unavailable", len(report.Unavailable))

	logger.InfoSkip(ctx, 1, "Risk analysis completed",
		"run_id", report.RunID,
		"positions", len(report.Positions),
		"unavailable", len(report.Unavailable),
		"delta", report.Totals.Delta,
		"gamma", report.Totals.Gamma,
		"theta", report.Totals.Theta,
		"vega", report.Totals.Vega,
		"value", report.Value,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return report, nil
}
