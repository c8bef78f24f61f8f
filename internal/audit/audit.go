package audit

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"trade-auditor/internal/interfaces"
	"trade-auditor/internal/logger"
	"trade-auditor/internal/matcher"
	"trade-auditor/internal/strategy"
	"trade-auditor/internal/types"

	"github.com/google/uuid"
)

// Auditor runs the sort, match, cluster and classify pipeline over one fill
// log. It holds no per-run state and may be shared across goroutines.
type Auditor struct {
	clusterer *strategy.Clusterer
	now       func() time.Time
}

var _ interfaces.Auditor = (*Auditor)(nil)

func NewAuditor(minHoldingDays float64) *Auditor {
	return &Auditor{clusterer: strategy.NewClusterer(minHoldingDays), now: time.Now}
}

func (a *Auditor) Run(ctx context.Context, fills []types.Fill) (*types.AuditReport, error) {
	if err := Validate(fills); err != nil {
		return nil, err
	}

	res := matcher.Match(fills)
	strategies := a.clusterer.Cluster(strategy.Candidates(res.Closed, res.Open))

	report := &types.AuditReport{
		RunID:       uuid.NewString(),
		GeneratedAt: a.now().UTC(),
		Closed:      res.Closed,
		Open:        res.Open,
		Strategies:  strategies,
		Summary:     Summarize(res, strategies),
	}

	s := report.Summary
	logger.Audit(ctx, report.RunID, s.FillCount, s.ClosedCount, s.OpenCount, s.StrategyCount,
		s.RealizedPnL.InexactFloat64(),
		"undated_fills", s.UndatedFills,
		"orphan_fills", s.OrphanFills,
		"win_rate", s.WinRate,
	)
	return report, nil
}

// Validate checks the shape of the fill sequence. It is the only hard
// failure of an audit.
func Validate(fills []types.Fill) error {
	if fills == nil {
		return &types.InputError{Requirement: "fills", Reason: "missing fill sequence"}
	}
	for i, f := range fills {
		if strings.TrimSpace(f.Instrument.Underlying) == "" {
			return &types.InputError{Requirement: fmt.Sprintf("fills[%d].underlying", i), Reason: "missing"}
		}
		if math.IsNaN(f.Qty) || math.IsInf(f.Qty, 0) {
			return &types.InputError{Requirement: fmt.Sprintf("fills[%d].qty", i), Reason: "not a finite number"}
		}
		if math.IsNaN(f.Instrument.Strike) || math.IsInf(f.Instrument.Strike, 0) {
			return &types.InputError{Requirement: fmt.Sprintf("fills[%d].strike", i), Reason: "not a finite number"}
		}
	}
	return nil
}
