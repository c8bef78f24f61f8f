package auditobs

import (
	"context"
	"time"

	"trade-auditor/internal/interfaces"
	"trade-auditor/internal/logger"
	"trade-auditor/internal/metrics"
	"trade-auditor/internal/trace"
	"trade-auditor/internal/types"
)

// observableAuditor wraps an Auditor with logging, tracing and metrics
type observableAuditor struct {
	auditor interfaces.Auditor
	metrics *metrics.Metrics
}

// Compile-time interface check
var _ interfaces.Auditor = (*observableAuditor)(nil)

// Wrap wraps an auditor with observability middleware. m may be nil.
func Wrap(auditor interfaces.Auditor, m *metrics.Metrics) interfaces.Auditor {
	return &observableAuditor{auditor: auditor, metrics: m}
}

// Run executes an audit with observability
func (o *observableAuditor) Run(ctx context.Context, fills []types.Fill) (*types.AuditReport, error) {
	ctx, span := trace.StartSpan(ctx, "audit.Run")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Starting audit", "fills", len(fills))
	start := time.Now()

	report, err := o.auditor.Run(ctx, fills)
	if err != nil {
		trace.Fail(span, err)
		logger.ErrorWithErrSkip(ctx, 1, "Audit failed", err, "fills", len(fills))
		return nil, err
	}
	o.metrics.ObserveAudit(report, time.Since(start))
	trace.Counts(span,
		"fills", len(fills),
		"closed", len(report.Closed),
		"open", len(report.Open),
		"strategies", len(report.Strategies),
	)

	if n := report.Summary.UndatedFills; n > 0 {
		logger.WarnSkip(ctx, 1, "Fills without timestamps were sorted last", "count", n)
	}
	if n := report.Summary.OrphanFills; n > 0 {
		logger.WarnSkip(ctx, 1, "Zero-quantity fills had no open position", "count", n)
	}

	logger.DebugSkip(ctx, 1, "Audit completed",
		"run_id", report.RunID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return report, nil
}
